// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec"
)

// CompactSigSize is the length of a recoverable compact signature.
const CompactSigSize = 65

// SignCompact produces a 65 bytes recoverable signature over hash.
func SignCompact(privKey *PrivateKey, hash HashType) ([]byte, error) {
	return btcec.SignCompact(curve, (*btcec.PrivateKey)(privKey), hash[:], true)
}

// RecoverCompact returns the public key that produced sig over hash.
func RecoverCompact(sig []byte, hash HashType) (*PublicKey, error) {
	if len(sig) != CompactSigSize {
		return nil, ErrInvalidSignatureLength
	}
	pk, _, err := btcec.RecoverCompact(curve, sig, hash[:])
	if err != nil {
		return nil, ErrSignatureRecovery
	}
	return (*PublicKey)(pk), nil
}

// VerifyCompact reports whether sig over hash was made by a key whose
// hash160 equals addr.
func VerifyCompact(sig []byte, hash HashType, addr []byte) bool {
	pk, err := RecoverCompact(sig, hash)
	if err != nil {
		return false
	}
	return bytes.Equal(pk.Hash160(), addr)
}
