package wallet

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *JSONStore {
	t.Helper()
	return NewJSONStore(filepath.Join(t.TempDir(), "wallets.json"))
}

func TestJSONStoreRoundTrip(t *testing.T) {
	store := tempStore(t)

	in := []*Wallet{
		{Name: "owner", Address: "0x1111", Type: TypeWatchOnly},
		{
			Name:      "pool-op",
			Address:   "0x2222",
			Type:      TypeSigning,
			KeyRef:    "w3pool.pool-op",
			IsDefault: true,
			CreatedAt: "2026-01-01T00:00:00Z",
		},
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Name, out[0].Name)
	assert.Equal(t, in[1], out[1])
}

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	store := tempStore(t)

	wallets, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, wallets)
}

func TestJSONStoreOverwrites(t *testing.T) {
	store := tempStore(t)

	require.NoError(t, store.Save([]*Wallet{{Name: "first", Address: "0x111", Type: TypeWatchOnly}}))
	require.NoError(t, store.Save([]*Wallet{
		{Name: "second-a", Address: "0x222", Type: TypeWatchOnly},
		{Name: "second-b", Address: "0x333", Type: TypeWatchOnly},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "second-a", loaded[0].Name)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0600))

	_, err := NewJSONStore(path).Load()
	assert.Error(t, err)
}

func TestJSONStoreFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	store := tempStore(t)
	require.NoError(t, store.Save([]*Wallet{{Name: "owner", Address: "0x1"}}))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestManagerPersistsThroughJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")

	mgr := NewManager(WithStore(NewJSONStore(path)))
	require.NoError(t, mgr.Add("owner", &Wallet{Name: "owner", Address: "0xABC", Type: TypeWatchOnly}))

	// A second manager over the same file sees the wallet.
	reloaded := NewManager(WithStore(NewJSONStore(path)))
	w, err := reloaded.Get("owner")
	require.NoError(t, err)
	assert.Equal(t, "0xABC", w.Address)
}
