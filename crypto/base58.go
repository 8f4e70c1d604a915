// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crypto

import (
	"github.com/btcsuite/btcutil/base58"
)

const checksumLen = 4

// Base58CheckEncode appends the 4 bytes checksum to in and encodes the
// result in base58.
func Base58CheckEncode(in []byte) string {
	b := make([]byte, 0, len(in)+checksumLen)
	b = append(b, in...)
	cksum := checksum(in)
	b = append(b, cksum[:]...)
	return base58.Encode(b)
}

func checksum(input []byte) (cksum [checksumLen]byte) {
	h := DoubleHashH(input)
	copy(cksum[:], h[:checksumLen])
	return
}

// Base58CheckDecode decodes a base58 string and verifies its trailing checksum.
func Base58CheckDecode(in string) ([]byte, error) {
	raw := base58.Decode(in)
	if len(raw) <= checksumLen {
		return nil, ErrInvalidBase58Encoding
	}
	sep := len(raw) - checksumLen
	var cksum [checksumLen]byte
	copy(cksum[:], raw[sep:])
	content := make([]byte, sep)
	copy(content, raw[:sep])
	if checksum(content) != cksum {
		return nil, ErrInvalidBase58Checksum
	}
	return content, nil
}
