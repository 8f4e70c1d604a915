// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crypto

import (
	"github.com/btcsuite/btcd/btcec"
)

// PublicKey is a btcec.PublicKey wrapper
type PublicKey btcec.PublicKey

// PublicKeyFromBytes parses a compressed or uncompressed public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pk, err := btcec.ParsePubKey(b, curve)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return (*PublicKey)(pk), nil
}

// Serialize returns the 33 bytes compressed encoding.
func (p *PublicKey) Serialize() []byte {
	return (*btcec.PublicKey)(p).SerializeCompressed()
}

// Hash160 returns the 20 bytes address digest of the public key.
func (p *PublicKey) Hash160() []byte {
	return Hash160(p.Serialize())
}
