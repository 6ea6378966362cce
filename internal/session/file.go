package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/skilltrack/pkg/log"
)

// fileRecord — формат файла сессии на диске.
type fileRecord struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// File — хранилище сессии в JSON-файле пользователя.
//
// Запись атомарна: пара пишется во временный файл в том же каталоге
// и переименовывается поверх старого, поэтому читатель видит либо
// старую пару, либо новую.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile создаёт файловое хранилище. Пустой path — путь по умолчанию (DefaultPath).
func NewFile(path string) (*File, error) {
	const op = "session.NewFile"

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		path = p
	}

	return &File{path: path}, nil
}

// DefaultPath — <user config dir>/skilltrack/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "skilltrack", "session.json"), nil
}

// Path возвращает путь к файлу сессии.
func (f *File) Path() string { return f.path }

func (f *File) Get(ctx context.Context) (Credentials, error) {
	const op = "session.File.Get"

	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return Credentials{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	c := Credentials{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}
	if !c.Valid() && !c.Empty() {
		log.From(ctx).Warn("session_file_incomplete", "path", f.path)
	}

	return c.normalize(), nil
}

func (f *File) Set(_ context.Context, c Credentials) error {
	const op = "session.File.Set"

	if err := validate(c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	data, err := json.MarshalIndent(fileRecord{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken}, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeAtomic(f.path, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (f *File) Clear(_ context.Context) error {
	const op = "session.File.Clear"

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// writeAtomic пишет data во временный файл рядом с path и переименовывает его.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}

	return nil
}
