// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"

	"github.com/BOXFoundation/ledgerd/crypto"
)

// AddressLength is the byte length of an address
const AddressLength = crypto.AddressSize

var addressPrefix = [2]byte{0x13, 0x26}

// Address is the hash160 of a compressed secp256k1 public key. It
// identifies accounts and validators.
type Address [AddressLength]byte

// ZeroAddress is the empty address.
var ZeroAddress Address

// NewAddress returns an address from its 20 raw bytes.
func NewAddress(b []byte) (Address, error) {
	var addr Address
	if len(b) != AddressLength {
		return addr, ErrInvalidAddressLength
	}
	copy(addr[:], b)
	return addr, nil
}

// NewAddressFromPubKey derives the address of a public key.
func NewAddressFromPubKey(pubKey *crypto.PublicKey) Address {
	var addr Address
	copy(addr[:], pubKey.Hash160())
	return addr
}

// ParseAddress decodes the base58check form produced by String.
func ParseAddress(s string) (Address, error) {
	var addr Address
	raw, err := crypto.Base58CheckDecode(s)
	if err != nil {
		return addr, err
	}
	if len(raw) != len(addressPrefix)+AddressLength {
		return addr, ErrInvalidAddressLength
	}
	if !bytes.Equal(raw[:len(addressPrefix)], addressPrefix[:]) {
		return addr, ErrInvalidAddressPrefix
	}
	copy(addr[:], raw[len(addressPrefix):])
	return addr, nil
}

// String returns the base58check encoding of the address.
func (a Address) String() string {
	b := make([]byte, 0, len(addressPrefix)+AddressLength)
	b = append(b, addressPrefix[:]...)
	b = append(b, a[:]...)
	return crypto.Base58CheckEncode(b)
}

// Bytes returns a copy of the raw address.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// Less orders addresses byte-wise.
func (a Address) Less(other Address) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

func hashFromBytes(b []byte) (crypto.HashType, error) {
	var h crypto.HashType
	if len(b) == 0 {
		return h, nil
	}
	if err := h.SetBytes(b); err != nil {
		return h, ErrInvalidHashLength
	}
	return h, nil
}

func addressFromBytes(b []byte) (Address, error) {
	if len(b) == 0 {
		return ZeroAddress, nil
	}
	return NewAddress(b)
}
