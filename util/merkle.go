// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"github.com/BOXFoundation/ledgerd/crypto"
)

// MerkleRoot computes the root of a binary merkle tree over leaves.
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	  h1            h2            h3            h4
//
// An odd node at any level is paired with itself. The root of an empty
// set is the zero hash.
func MerkleRoot(leaves []crypto.HashType) crypto.HashType {
	if len(leaves) == 0 {
		return crypto.ZeroHash
	}
	level := make([]crypto.HashType, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		next := make([]crypto.HashType, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, CombineHash(level[i], right))
		}
		level = next
	}
	return level[0]
}

// CombineHash takes two hashes, and returns the hash of their concatenation.
func CombineHash(left, right crypto.HashType) crypto.HashType {
	var buf [crypto.HashSize * 2]byte
	copy(buf[:crypto.HashSize], left[:])
	copy(buf[crypto.HashSize:], right[:])
	return crypto.DoubleHashH(buf[:])
}
