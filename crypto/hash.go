// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160"
)

const (
	// HashSize is length of digest
	HashSize = 32
	// AddressSize is the length of a hash160 digest
	AddressSize = ripemd160.Size
)

// HashType is a 32 bytes double sha256 digest
type HashType [HashSize]byte

// ZeroHash is the all-zero hash, used as the parent of the genesis block.
var ZeroHash HashType

// String returns the hex encoding of the hash.
func (hash HashType) String() string {
	return hex.EncodeToString(hash[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (hash HashType) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, hash[:])
	return b
}

// IsEqual returns true if target is the same as hash.
func (hash *HashType) IsEqual(target *HashType) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// Less reports whether hash sorts before other byte-wise.
func (hash HashType) Less(other HashType) bool {
	return bytes.Compare(hash[:], other[:]) < 0
}

// SetBytes sets the hash from a 32 bytes slice.
func (hash *HashType) SetBytes(hashBytes []byte) error {
	if len(hashBytes) != HashSize {
		return ErrInvalidHashLength
	}
	copy(hash[:], hashBytes)
	return nil
}

// SetString sets the hash from its hex encoding.
func (hash *HashType) SetString(str string) error {
	b, err := hex.DecodeString(str)
	if err != nil {
		return err
	}
	return hash.SetBytes(b)
}

// NewHashFromStr parses a hex encoded hash.
func NewHashFromStr(str string) (*HashType, error) {
	hash := &HashType{}
	if err := hash.SetString(str); err != nil {
		return nil, err
	}
	return hash, nil
}

// Ripemd160 calculates the RIPEMD160 digest of buf
func Ripemd160(buf []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Sha256 calculates the sha256 digest of buf
func Sha256(buf []byte) []byte {
	digest := sha256.Sum256(buf)
	return digest[:]
}

// Sha256Multi calculates the sha256 digest of all buffers concatenated.
func Sha256Multi(data ...[]byte) []byte {
	hasher := sha256.New()
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

// Hash160 calculates ripemd160(sha256(buf)).
func Hash160(buf []byte) []byte {
	return Ripemd160(Sha256(buf))
}

// DoubleHashH calculates hash(hash(b)) and returns the resulting bytes as a hash.
func DoubleHashH(b []byte) HashType {
	first := sha256.Sum256(b)
	return HashType(sha256.Sum256(first[:]))
}
