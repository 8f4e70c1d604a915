// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package account

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/BOXFoundation/ledgerd/core"
	"github.com/BOXFoundation/ledgerd/core/types"
	"github.com/BOXFoundation/ledgerd/crypto"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters of new keystores. Unlocking reads them from the file.
var (
	scryptN     = 1 << 18
	scryptR     = 8
	scryptP     = 1
	scryptDklen = 32
)

// Account offers method to operate ecdsa keys stored in a keystore file path
type Account struct {
	Path     string
	Addr     types.Address
	PrivKey  *crypto.PrivateKey
	Unlocked bool
}

var _ core.Account = (*Account)(nil)

type keyStoreJSON struct {
	Address string     `json:"address"`
	Crypto  cryptoJSON `json:"crypto"`
}

type cryptoJSON struct {
	Ciphertext   string           `json:"ciphertext"`
	Cipher       string           `json:"cipher"`
	Cipherparams cipherParamsJSON `json:"cipherparams"`
	Mac          string           `json:"mac"`
	KdfParams    kdfParamsJSON    `json:"kdfparams"`
}

type cipherParamsJSON struct {
	Iv string `json:"iv"`
}

type kdfParamsJSON struct {
	Salt  string `json:"salt"`
	Dklen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
}

// NewAccount creates a key and saves it to path, encrypted with
// passphrase. The returned account is unlocked.
func NewAccount(path, passphrase string) (*Account, error) {
	priv, pub, err := crypto.NewKeyPair()
	if err != nil {
		return nil, err
	}
	acc := &Account{
		Path:     path,
		Addr:     types.NewAddressFromPubKey(pub),
		PrivKey:  priv,
		Unlocked: true,
	}
	if err := acc.SaveWithPassphrase(passphrase); err != nil {
		return nil, err
	}
	return acc, nil
}

// NewAccountFromFile create account from file.
func NewAccountFromFile(filePath string) (*Account, error) {
	ksJSON, err := readKeystoreJSON(filePath)
	if err != nil {
		return nil, err
	}
	addr, err := types.ParseAddress(ksJSON.Address)
	if err != nil {
		return nil, err
	}
	return &Account{Path: filePath, Addr: addr}, nil
}

// LoadAccount reads the keystore at path and unlocks it.
func LoadAccount(path, passphrase string) (*Account, error) {
	acc, err := NewAccountFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := acc.UnlockWithPassphrase(passphrase); err != nil {
		return nil, err
	}
	return acc, nil
}

// Address implements core.Account.
func (acc *Account) Address() types.Address {
	return acc.Addr
}

// PublicKey returns the account's public key in compressed byte format
func (acc *Account) PublicKey() []byte {
	return acc.PrivKey.PubKey().Serialize()
}

// SaveWithPassphrase save account with passphrase
func (acc *Account) SaveWithPassphrase(passphrase string) error {
	if acc.PrivKey == nil {
		return ErrLocked
	}
	return savePrivateKeyWithPassphrase(acc.PrivKey, passphrase, acc.Path)
}

// UnlockWithPassphrase unlocks an account and generate its private key
func (acc *Account) UnlockWithPassphrase(passphrase string) error {
	privateKeyBytes, err := unlockPrivateKeyWithPassphrase(acc.Path, passphrase)
	if err != nil {
		return err
	}
	priv, pub, err := crypto.KeyPairFromBytes(privateKeyBytes)
	if err != nil {
		return err
	}
	if types.NewAddressFromPubKey(pub) != acc.Addr {
		return ErrKeyMismatch
	}
	acc.PrivKey = priv
	acc.Unlocked = true
	return nil
}

// Lock erases the private key from memory.
func (acc *Account) Lock() {
	if acc.PrivKey != nil {
		acc.PrivKey.Erase()
		acc.PrivKey = nil
	}
	acc.Unlocked = false
}

// Sign implements core.Account. It returns a compact signature over the
// 32 bytes hash in payload.
func (acc *Account) Sign(payload []byte) ([]byte, error) {
	if !acc.Unlocked || acc.PrivKey == nil {
		return nil, ErrLocked
	}
	var hash crypto.HashType
	if err := hash.SetBytes(payload); err != nil {
		return nil, err
	}
	return crypto.SignCompact(acc.PrivKey, hash)
}

func savePrivateKeyWithPassphrase(privatekey *crypto.PrivateKey, passphrase, path string) error {
	addr := types.NewAddressFromPubKey(privatekey.PubKey())
	cpt, err := newCryptoJSON(privatekey, passphrase)
	if err != nil {
		return err
	}
	ksJSON := &keyStoreJSON{
		Crypto:  cpt,
		Address: addr.String(),
	}
	content, err := json.Marshal(ksJSON)
	if err != nil {
		return err
	}
	tmpPath, err := tryWriteTempFile(path, content)
	if err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func tryWriteTempFile(path string, content []byte) (string, error) {
	const dirPerm = 0700
	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", err
	}
	f, err := ioutil.TempFile(dir, fmt.Sprintf(".%s.tmp", filename))
	if err != nil {
		return "", err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	f.Close()
	return f.Name(), nil
}

func newCryptoJSON(privateKey *crypto.PrivateKey, passphrase string) (cryptoJSON, error) {
	if len(passphrase) == 0 {
		return cryptoJSON{}, ErrEmptyPassphrase
	}
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return cryptoJSON{}, err
	}
	derivedKey, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptDklen)
	if err != nil {
		return cryptoJSON{}, err
	}
	aesKey := derivedKey[:16]

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return cryptoJSON{}, err
	}
	cipherText, err := aesCtr(aesKey, privateKey.Serialize(), iv)
	if err != nil {
		return cryptoJSON{}, err
	}
	mac := crypto.Sha256Multi(derivedKey[16:32], cipherText)
	return cryptoJSON{
		Ciphertext:   hex.EncodeToString(cipherText),
		Cipherparams: cipherParamsJSON{Iv: hex.EncodeToString(iv)},
		Cipher:       "aes-128-ctr",
		KdfParams: kdfParamsJSON{
			Salt:  hex.EncodeToString(salt),
			Dklen: scryptDklen,
			N:     scryptN,
			R:     scryptR,
			P:     scryptP,
		},
		Mac: hex.EncodeToString(mac),
	}, nil
}

func unlockPrivateKeyWithPassphrase(path, passphrase string) ([]byte, error) {
	ksJSON, err := readKeystoreJSON(path)
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	cpt := ksJSON.Crypto
	kdfParams := cpt.KdfParams
	salt, err := hex.DecodeString(kdfParams.Salt)
	if err != nil {
		return nil, err
	}
	derivedKey, err := scrypt.Key(
		[]byte(passphrase),
		salt,
		kdfParams.N,
		kdfParams.R,
		kdfParams.P,
		kdfParams.Dklen,
	)
	if err != nil {
		return nil, err
	}
	cipherText, err := hex.DecodeString(cpt.Ciphertext)
	if err != nil {
		return nil, err
	}
	mac := crypto.Sha256Multi(derivedKey[16:32], cipherText)
	if hex.EncodeToString(mac) != cpt.Mac {
		return nil, ErrIncorrectPassphrase
	}
	iv, err := hex.DecodeString(cpt.Cipherparams.Iv)
	if err != nil {
		return nil, err
	}
	return aesCtr(derivedKey[:16], cipherText, iv)
}

func aesCtr(key, text, iv []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(aesBlock, iv)
	output := make([]byte, len(text))
	stream.XORKeyStream(output, text)
	return output, nil
}

// GetKeystoreAddress gets the address info from a keystore json file
func GetKeystoreAddress(path string) (string, error) {
	ksJSON, err := readKeystoreJSON(path)
	if err != nil {
		return "", err
	}
	return ksJSON.Address, nil
}

func readKeystoreJSON(path string) (*keyStoreJSON, error) {
	fileContent, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ksJSON keyStoreJSON
	if err = json.Unmarshal(fileContent, &ksJSON); err != nil {
		return nil, err
	}
	return &ksJSON, nil
}
