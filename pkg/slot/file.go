package slot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// File stores each key as <dir>/<key>.json. Reads and writes hold an
// exclusive flock so two processes never interleave a write.
type File struct {
	dir string
}

// NewFile creates a File slot rooted at dir, creating the directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create slot directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// Path returns the file backing key.
func (f *File) Path(key string) string {
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

// Get implements Slot.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	path := f.Path(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", false, nil
	}

	var value string
	err := withLock(path, os.O_RDONLY, func(file *os.File) error {
		data, err := io.ReadAll(file)
		if err != nil {
			return fmt.Errorf("read slot %s: %w", key, err)
		}
		value = string(data)
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements Slot.
func (f *File) Set(_ context.Context, key, value string) error {
	return withLock(f.Path(key), os.O_RDWR|os.O_CREATE, func(file *os.File) error {
		if err := file.Truncate(0); err != nil {
			return fmt.Errorf("truncate slot %s: %w", key, err)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek slot %s: %w", key, err)
		}
		if _, err := file.WriteString(value); err != nil {
			return fmt.Errorf("write slot %s: %w", key, err)
		}
		return nil
	})
}

func withLock(path string, flag int, fn func(*os.File) error) error {
	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return fmt.Errorf("open slot file: %w", err)
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock slot file: %w", err)
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN)

	return fn(file)
}
