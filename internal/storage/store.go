package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// DefaultDir is the root dir for file storage.
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key of a kernel result.
type Key struct {
	Dataset string `json:"dataset"`
	Label   string `json:"label"`
}

// Path is the file friendly rendering of the key.
func (k Key) Path() string {
	return fmt.Sprintf("%s_%s", clean(k.Dataset), clean(k.Label))
}

func clean(s string) string {
	return strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(strings.ToLower(s))
}

// Persistence stores and loads values by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
