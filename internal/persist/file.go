package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
)

// ErrBadRoomCode rejects room codes that cannot safely name a snapshot
// file. A code containing path separators or dot segments would escape the
// data directory.
var ErrBadRoomCode = errors.New("invalid room code")

// FileStore keeps one JSON array per room under a data directory. Writes go
// through a temp file and rename so a crash mid-write leaves the previous
// snapshot intact.
type FileStore struct {
	dir string
	log *zap.Logger
}

func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (f *FileStore) path(room string) (string, error) {
	if room == "" || room == "." || room == ".." ||
		room != filepath.Base(room) || strings.ContainsAny(room, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrBadRoomCode, room)
	}
	return filepath.Join(f.dir, room+".json"), nil
}

// Load is fail-open: a missing or unparseable snapshot yields an empty
// sequence, never an error that would block startup. Corruption is logged
// and the file will be overwritten by the next mutation.
func (f *FileStore) Load(room string) ([]token.Token, error) {
	path, err := f.path(room)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warn("snapshot unreadable, starting empty",
				zap.String("room", room), zap.Error(err))
		}
		return nil, nil
	}
	var tokens []token.Token
	if err := json.Unmarshal(raw, &tokens); err != nil {
		f.log.Warn("snapshot corrupt, starting empty",
			zap.String("room", room), zap.Error(err))
		return nil, nil
	}
	return tokens, nil
}

func (f *FileStore) Save(room string, tokens []token.Token) error {
	path, err := f.path(room)
	if err != nil {
		return err
	}
	if tokens == nil {
		tokens = []token.Token{}
	}
	raw, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, room+"-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
