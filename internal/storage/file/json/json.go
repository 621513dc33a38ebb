package json

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/drakos74/ml-kernels/internal/storage"
	"github.com/rs/zerolog/log"
)

// BlobStorage stores every key as a json file under <path>/<shard>.
type BlobStorage struct {
	path  string
	shard string
	debug bool
}

// BlobShard creates json file shards under the given root dir.
func BlobShard(dir string) storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		return NewJsonBlob(dir, shard, false), nil
	}
}

func (s BlobStorage) Store(k storage.Key, value interface{}) error {
	p := filepath.Join(s.path, s.shard)
	err := Save(p, fileName(k), value)
	if err == nil && s.debug {
		log.Info().Str("path", p).Str("file", fileName(k)).Msg("stored json file")
	}
	return err
}

func (s BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(filepath.Join(s.path, s.shard), fileName(k), value)
}

// NewJsonBlob creates a json file storage.
// An empty dir falls back to storage.DefaultDir.
func NewJsonBlob(dir, shard string, debug bool) *BlobStorage {
	if dir == "" {
		dir = storage.DefaultDir
	}
	return &BlobStorage{
		path:  dir,
		shard: shard,
		debug: debug,
	}
}

func fileName(k storage.Key) string {
	return fmt.Sprintf("%s.json", k.Path())
}

// Save saves the given json struct into the given path with the provided filename.
func Save(filePath string, fileName string, value interface{}) error {
	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", filePath)
	}

	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal '%s': %w", fileName, err)
	}

	p := filepath.Join(filePath, fileName)
	err = ioutil.WriteFile(p, b, 0644)
	if err != nil {
		return fmt.Errorf("could not write file '%s': %w", p, err)
	}
	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {

	p := filepath.Join(filePath, fileName)

	data, err := ioutil.ReadFile(p)
	if err != nil {
		return fmt.Errorf("could not read file '%s' %s: %w", p, err.Error(), storage.NotFoundErr)
	}

	err = json.Unmarshal(data, value)
	if err != nil {
		return fmt.Errorf("could not unmarshal '%s' %s: %w", p, err.Error(), storage.CouldNotLoadErr)
	}

	return nil
}
