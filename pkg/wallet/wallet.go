/*
Package wallet loads, generates and stores Aptos Ed25519 accounts used to sign
feed transactions.
*/
package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/crypto"
	"golang.org/x/crypto/sha3"
	"gopkg.in/yaml.v3"
)

// ed25519Scheme is the authentication key scheme byte of single Ed25519 keys.
const ed25519Scheme = 0x00

// Account is an Aptos account backed by an Ed25519 private key. It can be used
// as a transaction signer.
type Account struct {
	*aptos.Account

	key *crypto.Ed25519PrivateKey
}

// KeyFile is the on-disk representation of an account.
type KeyFile struct {
	Address    string `yaml:"Address"`
	PrivateKey string `yaml:"PrivateKey"`
}

// ErrAddressMismatch is returned when the key file address doesn't match the
// address derived from its key.
var ErrAddressMismatch = errors.New("address doesn't match the private key")

// NewAccount generates a new random account.
func NewAccount() (*Account, error) {
	key, err := crypto.GenerateEd25519PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("can't generate key: %w", err)
	}
	return newAccount(key)
}

// NewAccountFromHex creates an account from the hex-encoded Ed25519 private
// key, "0x" prefix is optional. AIP-80 form ("ed25519-priv-0x...") is
// accepted as well.
func NewAccountFromHex(s string) (*Account, error) {
	formatted, err := crypto.FormatPrivateKey(s, crypto.PrivateKeyVariantEd25519)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	key := new(crypto.Ed25519PrivateKey)
	if err := key.FromHex(formatted); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return newAccount(key)
}

func newAccount(key *crypto.Ed25519PrivateKey) (*Account, error) {
	acc, err := aptos.NewAccountFromSigner(key)
	if err != nil {
		return nil, err
	}
	return &Account{Account: acc, key: key}, nil
}

// PrivateKeyHex returns the hex-encoded private key of the account.
func (a *Account) PrivateKeyHex() string {
	return a.key.ToHex()
}

// DeriveAddress returns the address of the account with the given Ed25519
// public key that has never rotated its key.
func DeriveAddress(pub []byte) aptos.AccountAddress {
	h := sha3.New256()
	_, _ = h.Write(pub)
	_, _ = h.Write([]byte{ed25519Scheme})

	var addr aptos.AccountAddress
	copy(addr[:], h.Sum(nil))
	return addr
}

// NewKeyFile returns key file contents for the account.
func NewKeyFile(a *Account) *KeyFile {
	return &KeyFile{
		Address:    a.Address.String(),
		PrivateKey: a.PrivateKeyHex(),
	}
}

// Account returns the account stored in the key file. If the file specifies
// an address, it must match the one derived from the key.
func (k *KeyFile) Account() (*Account, error) {
	acc, err := NewAccountFromHex(k.PrivateKey)
	if err != nil {
		return nil, err
	}
	if k.Address != "" {
		var addr aptos.AccountAddress
		if err := addr.ParseStringRelaxed(k.Address); err != nil {
			return nil, fmt.Errorf("invalid address: %w", err)
		}
		if addr != DeriveAddress(acc.key.PubKey().Bytes()) {
			return nil, fmt.Errorf("%w: %s", ErrAddressMismatch, k.Address)
		}
	}
	return acc, nil
}

// ReadKeyFile reads the YAML key file from the given path.
func ReadKeyFile(path string) (*KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read key file: %w", err)
	}
	k := new(KeyFile)
	if err := yaml.Unmarshal(data, k); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key file YAML: %w", err)
	}
	return k, nil
}

// Save writes the key file to the given path, the file is only readable by
// its owner. Existing files are not overwritten.
func (k *KeyFile) Save(path string) error {
	data, err := yaml.Marshal(k)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create dir for key file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
