// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crypto

import "errors"

// error
var (
	ErrInvalidBase58Encoding = errors.New("invalid base58 encoding")
	ErrInvalidBase58Checksum = errors.New("invalid base58 checksum")

	ErrInvalidHashLength      = errors.New("invalid hash length")
	ErrInvalidPrivateKey      = errors.New("invalid private key")
	ErrInvalidPublicKey       = errors.New("invalid public key")
	ErrInvalidSignatureLength = errors.New("invalid compact signature length")
	ErrSignatureRecovery      = errors.New("failed to recover public key from signature")
)
