package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Store keeps receipt blobs under slash-separated keys.
type Store struct {
	fs afero.Fs
}

// NewStore roots a store at dir on the host filesystem.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt dir: %w", err)
	}
	return NewStoreOnFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func NewStoreOnFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Put writes r to key. An existing key is never overwritten.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = rooted(key)

	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path.Dir(key), err)
	}

	f, err := s.fs.OpenFile(key, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(key)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return f.Close()
}

func (s *Store) Exists(key string) (bool, error) {
	info, err := s.fs.Stat(rooted(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// FS exposes the store read-only for serving.
func (s *Store) FS() afero.Fs {
	return afero.NewReadOnlyFs(s.fs)
}

func rooted(key string) string {
	return path.Clean("/" + key)
}
