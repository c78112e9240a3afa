package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"post-manager/domain/repository"

	"github.com/peterbourgon/diskv/v3"
)

// DiskStore persists session keys as files below a base directory.
type DiskStore struct {
	d *diskv.Diskv
}

func NewDiskStore(basePath string) (*DiskStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("disk store base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("create disk store %s: %w", basePath, err)
	}
	// No read cache: other processes may rewrite or erase keys.
	d := diskv.New(diskv.Options{
		BasePath:  basePath,
		Transform: func(string) []string { return []string{} },
		FilePerm:  0o600,
		PathPerm:  0o700,
	})
	return &DiskStore{d: d}, nil
}

func (s *DiskStore) Get(_ context.Context, key string) (string, error) {
	v, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return "", repository.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(v), nil
}

func (s *DiskStore) Set(_ context.Context, key, value string) error {
	if err := s.d.WriteString(key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *DiskStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		if !s.d.Has(k) {
			continue
		}
		if err := s.d.Erase(k); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("erase %s: %w", k, err)
		}
	}
	return nil
}
