package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const keychainService = "w3pool"

// envKeyOverride lets CI and scripts bypass the OS keychain entirely.
const envKeyOverride = "W3POOL_KEY"

// envKeyringPassword unlocks the file-backend keyring without an interactive
// prompt (headless hosts, CI).
const envKeyringPassword = "W3POOL_KEYRING_PASSWORD"

// sessionCache holds keys already resolved in this process, so a command
// signing several transactions only hits the keychain (or session file) once.
var sessionCache sync.Map // ref -> hex key

// KeystoreBackend abstracts private key storage so tests and embedders can
// substitute an in-memory implementation.
type KeystoreBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// Keystore wraps OS keychain access.
type Keystore struct {
	ring keyring.Keyring
}

// DefaultKeystore returns a keystore backed by the OS keychain.
func DefaultKeystore() *Keystore {
	fileDir := "~/.w3pool/keys"
	if dir := os.Getenv("W3POOL_CONFIG_DIR"); dir != "" {
		fileDir = filepath.Join(dir, "keys")
	}

	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
	}
	if pw := os.Getenv(envKeyringPassword); pw != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		// Use file backend as ultimate fallback.
		ring, _ = keyring.Open(keyring.Config{
			ServiceName:      keychainService,
			FileDir:          cfg.FileDir,
			FilePasswordFunc: cfg.FilePasswordFunc,
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		})
	}

	return &Keystore{ring: ring}
}

// Store saves a private key for a wallet name and returns a reference key.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keychainService + "." + name
	if k.ring == nil {
		sessionCache.Store(ref, hexKey)
		return ref, nil // in-memory fallback
	}
	err := k.ring.Set(keyring.Item{
		Key:  ref,
		Data: []byte(hexKey),
	})
	if err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	sessionCache.Store(ref, hexKey)
	return ref, nil
}

// Retrieve fetches a private key by its reference. Resolution order:
//
//  1. W3POOL_KEY env var (unattended use; value is normalised)
//  2. in-process cache
//  3. session file (`w3pool wallet unlock`)
//  4. OS keychain
func (k *Keystore) Retrieve(ref string) (string, error) {
	if env := os.Getenv(envKeyOverride); env != "" {
		return normaliseHexKey(env), nil
	}
	if v, ok := sessionCache.Load(ref); ok {
		return v.(string), nil
	}
	if v, ok := GetSessionKey(ref); ok {
		sessionCache.Store(ref, v)
		return v, nil
	}
	if k.ring == nil {
		return "", fmt.Errorf("keystore not available; run `w3pool wallet unlock` or set %s", envKeyOverride)
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	key := string(item.Data)
	sessionCache.Store(ref, key)
	return key, nil
}

// Delete removes a stored key from the keychain, the in-process cache and the
// session file.
func (k *Keystore) Delete(ref string) error {
	sessionCache.Delete(ref)
	RemoveSessionKey(ref)
	if k.ring == nil {
		return nil
	}
	return k.ring.Remove(ref)
}

// normaliseHexKey trims whitespace and strips an optional 0x/0X prefix.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

// InMemoryKeystore returns a keystore that stores keys in memory (for tests).
type InMemoryKeystore struct {
	data map[string]string
}

// NewInMemoryKeystore creates an in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	ref := keychainService + "." + name
	k.data[ref] = hexKey
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("key not found: %s", ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}
