package wallet

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetSession clears the session cache before and after a test. The cache
// lives in the real user cache dir, so tests share it and must not run in
// parallel.
func resetSession(t *testing.T) {
	t.Helper()
	require.NoError(t, ClearSession())
	t.Cleanup(func() { _ = ClearSession() })
}

// ---------------------------------------------------------------------------
// Put / Get round trips
// ---------------------------------------------------------------------------

func TestSessionKeyRoundTrip(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.owner", "0xprivatekey")
	got, ok := GetSessionKey("w3pool.owner")
	assert.True(t, ok)
	assert.Equal(t, "0xprivatekey", got)
}

func TestSessionKeyMissing(t *testing.T) {
	resetSession(t)

	_, ok := GetSessionKey("w3pool.ghost")
	assert.False(t, ok)
}

func TestSessionKeyOverwrite(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.owner", "first")
	PutSessionKey("w3pool.owner", "second")
	got, ok := GetSessionKey("w3pool.owner")
	assert.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestSessionKeysIndependent(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.owner", "key-owner")
	PutSessionKey("w3pool.donor", "key-donor")

	for ref, want := range map[string]string{
		"w3pool.owner": "key-owner",
		"w3pool.donor": "key-donor",
	} {
		got, ok := GetSessionKey(ref)
		assert.True(t, ok, ref)
		assert.Equal(t, want, got, ref)
	}
}

func TestSessionKeyCachedByName(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.owner", "somekey")
	assert.True(t, GetSessionKeyCached("owner"))
	assert.False(t, GetSessionKeyCached("ghost"))
}

// ---------------------------------------------------------------------------
// Bulk writes and snapshots
// ---------------------------------------------------------------------------

func TestBulkPutMergesWithExisting(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.existing", "existingkey")
	BulkPutSessionKeys(map[string]string{
		"w3pool.new1": "k1",
		"w3pool.new2": "k2",
	})

	snap := LoadSessionSnapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, "k1", snap["w3pool.new1"])
}

func TestBulkPutOverwrites(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.owner", "oldkey")
	BulkPutSessionKeys(map[string]string{"w3pool.owner": "newkey"})

	got, _ := GetSessionKey("w3pool.owner")
	assert.Equal(t, "newkey", got)
}

func TestBulkPutEmptyWritesNothing(t *testing.T) {
	resetSession(t)

	BulkPutSessionKeys(map[string]string{})
	assert.False(t, SessionActive())
}

func TestSnapshotIsACopy(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.owner", "original")
	snap := LoadSessionSnapshot()
	snap["w3pool.owner"] = "tampered"

	got, ok := GetSessionKey("w3pool.owner")
	assert.True(t, ok)
	assert.Equal(t, "original", got)
}

// ---------------------------------------------------------------------------
// Eviction
// ---------------------------------------------------------------------------

func TestRemoveSessionKey(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.target", "tk")
	PutSessionKey("w3pool.other", "ok")
	RemoveSessionKey("w3pool.target")

	_, ok := GetSessionKey("w3pool.target")
	assert.False(t, ok)
	_, ok = GetSessionKey("w3pool.other")
	assert.True(t, ok)
}

func TestRemoveSessionKeyMissing(t *testing.T) {
	resetSession(t)

	assert.NotPanics(t, func() { RemoveSessionKey("w3pool.ghost") })
}

func TestClearSession(t *testing.T) {
	resetSession(t)

	PutSessionKey("w3pool.a", "ka")
	PutSessionKey("w3pool.b", "kb")
	require.NoError(t, ClearSession())
	assert.False(t, SessionActive())
}

func TestClearSessionIdempotent(t *testing.T) {
	resetSession(t)

	require.NoError(t, ClearSession())
	require.NoError(t, ClearSession())
}

// ---------------------------------------------------------------------------
// File handling
// ---------------------------------------------------------------------------

func TestSessionFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	resetSession(t)

	PutSessionKey("w3pool.perm", "k")
	info, err := os.Stat(sessionPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSessionSurvivesCorruptFile(t *testing.T) {
	resetSession(t)

	path := sessionPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	assert.Empty(t, readSession())
	assert.False(t, SessionActive())
}
