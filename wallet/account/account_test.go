// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package account

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/facebookgo/ensure"
)

func init() {
	// keep the tests fast; unlocking reads the parameters from the file
	scryptN = 1 << 10
}

func tempKeystore(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "account")
	ensure.Nil(t, err)
	return filepath.Join(dir, "keys", "validator.keystore"), func() { os.RemoveAll(dir) }
}

func TestNewAndUnlock(t *testing.T) {
	path, clean := tempKeystore(t)
	defer clean()

	acc, err := NewAccount(path, "secret")
	ensure.Nil(t, err)
	ensure.True(t, acc.Unlocked)

	addr, err := GetKeystoreAddress(path)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, addr, acc.Address().String())

	loaded, err := NewAccountFromFile(path)
	ensure.Nil(t, err)
	ensure.False(t, loaded.Unlocked)
	ensure.DeepEqual(t, loaded.Address(), acc.Address())

	hash := crypto.DoubleHashH([]byte("payload"))
	_, err = loaded.Sign(hash[:])
	ensure.DeepEqual(t, err, ErrLocked)

	ensure.DeepEqual(t, loaded.UnlockWithPassphrase("wrong"), ErrIncorrectPassphrase)
	ensure.DeepEqual(t, loaded.UnlockWithPassphrase(""), ErrEmptyPassphrase)
	ensure.Nil(t, loaded.UnlockWithPassphrase("secret"))
	ensure.DeepEqual(t, loaded.PublicKey(), acc.PublicKey())

	sig, err := loaded.Sign(hash[:])
	ensure.Nil(t, err)
	ensure.True(t, crypto.VerifyCompact(sig, hash, acc.Address().Bytes()))

	loaded.Lock()
	_, err = loaded.Sign(hash[:])
	ensure.DeepEqual(t, err, ErrLocked)
}

func TestLoadAccount(t *testing.T) {
	path, clean := tempKeystore(t)
	defer clean()

	_, err := NewAccount(path, "")
	ensure.DeepEqual(t, err, ErrEmptyPassphrase)

	acc, err := NewAccount(path, "pw")
	ensure.Nil(t, err)
	loaded, err := LoadAccount(path, "pw")
	ensure.Nil(t, err)
	ensure.DeepEqual(t, loaded.Address(), acc.Address())

	_, err = LoadAccount(filepath.Join(filepath.Dir(path), "missing"), "pw")
	ensure.NotNil(t, err)
}
