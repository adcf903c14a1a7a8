package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
)

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	seq := []token.Token{
		{ID: token.NumberID(1), Src: "/a.png", X: 1, Y: 2, Width: 100, Height: 100},
		{ID: token.StringID("boss"), Src: "/b.png", X: 3, Y: 4, Width: 200, Height: 150},
	}
	require.NoError(t, fs.Save("main", seq))

	got, err := fs.Load("main")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, token.NumberID(1), got[0].ID, "order must survive persistence")
	assert.Equal(t, token.StringID("boss"), got[1].ID)
	assert.Equal(t, 200.0, got[1].Width)
}

func TestFileStore_MissingSnapshotLoadsEmpty(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	got, err := fs.Load("nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_CorruptSnapshotLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.json"), []byte("{not json"), 0o644))

	got, err := fs.Load("main")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_SaveReplacesWholeSnapshot(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, fs.Save("main", []token.Token{{ID: token.NumberID(1), Src: "/a.png"}}))
	require.NoError(t, fs.Save("main", []token.Token{{ID: token.NumberID(2), Src: "/b.png"}}))

	got, err := fs.Load("main")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, token.NumberID(2), got[0].ID)
}

func TestFileStore_RejectsPathEscapingRoomCodes(t *testing.T) {
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	fs, err := NewFileStore(dataDir, zap.NewNop())
	require.NoError(t, err)

	// a file one level above the data dir must be unreachable via Load
	planted := []byte(`[{"id":1,"src":"/leaked.png","x":0,"y":0,"width":100,"height":100}]`)
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.json"), planted, 0o644))

	got, err := fs.Load("../secret")
	assert.ErrorIs(t, err, ErrBadRoomCode)
	assert.Empty(t, got)

	for _, code := range []string{"", ".", "..", "a/b", `a\b`, "../../etc/passwd"} {
		_, err := fs.Load(code)
		assert.ErrorIs(t, err, ErrBadRoomCode, "Load(%q)", code)
		assert.ErrorIs(t, fs.Save(code, nil), ErrBadRoomCode, "Save(%q)", code)
	}

	// ordinary codes still work
	require.NoError(t, fs.Save("MAIN01", nil))
}

func TestFileStore_RoomsAreIsolated(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, fs.Save("AAAAAA", []token.Token{{ID: token.NumberID(1), Src: "/a.png"}}))
	require.NoError(t, fs.Save("BBBBBB", nil))

	got, err := fs.Load("AAAAAA")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = fs.Load("BBBBBB")
	require.NoError(t, err)
	assert.Empty(t, got)
}
