// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package account

import "errors"

// Error definitions
var (
	ErrLocked              = errors.New("account is locked")
	ErrEmptyPassphrase     = errors.New("passphrase should not be empty")
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")
	ErrKeyMismatch         = errors.New("private key doesn't match address, the keystore file may be broken")
)
