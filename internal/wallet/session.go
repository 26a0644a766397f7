package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// The session cache holds decrypted signing keys between commands so one
// keychain unlock covers a whole donation or claim flow. It is a plain JSON
// map from key refs to hex keys in the user cache directory, 0600:
//
//	macOS:   ~/Library/Caches/w3pool/session.json
//	Linux:   ~/.cache/w3pool/session.json
//	Windows: %LocalAppData%\w3pool\session.json

// GetSessionKey returns the cached key for ref, or ("", false).
func GetSessionKey(ref string) (string, bool) {
	v, ok := readSession()[ref]
	return v, ok
}

// GetSessionKeyCached reports whether the named wallet has a cached key.
// Takes the plain wallet name, not the full ref.
func GetSessionKeyCached(name string) bool {
	_, ok := GetSessionKey(keychainService + "." + name)
	return ok
}

// PutSessionKey caches one key. Write errors are dropped: the cache is an
// optimization over the keystore, never the only copy of a key.
func PutSessionKey(ref, hexKey string) {
	keys := readSession()
	keys[ref] = hexKey
	_ = writeSession(keys)
}

// BulkPutSessionKeys merges several keys in one read+write. The unlock
// --all loop uses it instead of a PutSessionKey per wallet.
func BulkPutSessionKeys(keys map[string]string) {
	if len(keys) == 0 {
		return
	}
	merged := readSession()
	for ref, hexKey := range keys {
		merged[ref] = hexKey
	}
	_ = writeSession(merged)
}

// LoadSessionSnapshot returns a copy of the whole cache in one file read.
func LoadSessionSnapshot() map[string]string {
	return readSession()
}

// RemoveSessionKey evicts one key. Keystore.Delete calls it so a removed
// wallet cannot keep signing from the cache.
func RemoveSessionKey(ref string) {
	keys := readSession()
	if _, ok := keys[ref]; !ok {
		return
	}
	delete(keys, ref)
	_ = writeSession(keys)
}

// ClearSession deletes the session file. A missing file is not an error.
func ClearSession() error {
	err := os.Remove(sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// SessionActive reports whether any key is cached.
func SessionActive() bool {
	return len(readSession()) > 0
}

func sessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, keychainService, "session.json")
}

// readSession returns the cached key map, empty (never nil) when the file
// is missing or unreadable.
func readSession() map[string]string {
	keys := make(map[string]string)
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return keys
	}
	if err := json.Unmarshal(data, &keys); err != nil {
		return make(map[string]string)
	}
	return keys
}

func writeSession(keys map[string]string) error {
	path := sessionPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
