// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wallet

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/log"
	"github.com/BOXFoundation/ledgerd/wallet/account"
	"golang.org/x/crypto/ssh/terminal"
)

var logger = log.NewLogger("wallet")

const keystoreSuffix = ".keystore"

// Manager is a directory based type to manipulate accounts. Every account
// is one keystore file named after its address.
type Manager struct {
	path     string
	mtx      sync.Mutex
	accounts map[types.Address]*account.Account
}

// NewWalletManager creates a wallet manager from files in the path
func NewWalletManager(path string) (*Manager, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}
	wlt := &Manager{path: path}
	return wlt, wlt.loadAccounts()
}

func (wlt *Manager) loadAccounts() error {
	files, err := getKeystoreFilePaths(wlt.path)
	if err != nil {
		return err
	}
	wlt.accounts = make(map[types.Address]*account.Account)
	for _, filePath := range files {
		acc, err := account.NewAccountFromFile(filePath)
		if err != nil {
			logger.Warnf("Skip keystore %s: %v", filePath, err)
			continue
		}
		wlt.accounts[acc.Address()] = acc
	}
	return nil
}

func getKeystoreFilePaths(baseDir string) ([]string, error) {
	dir, err := ioutil.ReadDir(baseDir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(dir))
	for _, fi := range dir {
		if !fi.IsDir() && strings.HasSuffix(fi.Name(), keystoreSuffix) {
			files = append(files, filepath.Join(baseDir, fi.Name()))
		}
	}
	return files, nil
}

// ListAccounts returns the addresses of all keystore files, sorted.
func (wlt *Manager) ListAccounts() []types.Address {
	wlt.mtx.Lock()
	defer wlt.mtx.Unlock()
	addrs := make([]types.Address, 0, len(wlt.accounts))
	for addr := range wlt.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].String() < addrs[j].String() })
	return addrs
}

// NewAccount creates a key pair and stores it in a file encrypted by
// passphrase.
func (wlt *Manager) NewAccount(passphrase string) (types.Address, error) {
	if passphrase == "" {
		return types.ZeroAddress, account.ErrEmptyPassphrase
	}
	tmp := filepath.Join(wlt.path, "new"+keystoreSuffix+".tmp")
	acc, err := account.NewAccount(tmp, passphrase)
	if err != nil {
		return types.ZeroAddress, err
	}
	target := wlt.keystorePath(acc.Address())
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return types.ZeroAddress, err
	}
	acc.Path = target
	acc.Lock()

	wlt.mtx.Lock()
	wlt.accounts[acc.Address()] = acc
	wlt.mtx.Unlock()
	return acc.Address(), nil
}

// Unlock returns the account of addr, unlocked with passphrase.
func (wlt *Manager) Unlock(addr types.Address, passphrase string) (*account.Account, error) {
	wlt.mtx.Lock()
	acc, ok := wlt.accounts[addr]
	wlt.mtx.Unlock()
	if !ok {
		return nil, fmt.Errorf("address not found: %s", addr)
	}
	return account.LoadAccount(acc.Path, passphrase)
}

// DumpPrivKey returns an account's private key bytes in hex string format
func (wlt *Manager) DumpPrivKey(addr types.Address, passphrase string) (string, error) {
	acc, err := wlt.Unlock(addr, passphrase)
	if err != nil {
		return "", err
	}
	defer acc.Lock()
	return hex.EncodeToString(acc.PrivKey.Serialize()), nil
}

func (wlt *Manager) keystorePath(addr types.Address) string {
	return filepath.Join(wlt.path, addr.String()+keystoreSuffix)
}

// ReadPassphraseStdin reads passphrase from stdin without echo passphrase
// into terminal
func ReadPassphraseStdin() (string, error) {
	fmt.Println("Please Input Your Passphrase")
	input, err := terminal.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(input), nil
}
