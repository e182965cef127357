package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/vendordocs/docscout/internal/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk shape:
//
//	sources:
//	  GPU:
//	    - https://vendor.example/gpu/
//	  SOFTWARE:
//	    - https://developer.vendor.example/
type catalogFile struct {
	Sources map[domain.ProductType][]string `yaml:"sources"`
}

type YAMLLoader struct {
	reader io.Reader
}

func NewYAMLLoader(reader io.Reader) *YAMLLoader {
	return &YAMLLoader{reader: reader}
}

func (l *YAMLLoader) Load() (*Catalog, error) {
	decoder := yaml.NewDecoder(l.reader)
	var file catalogFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(file.Sources)
}

// LoadFile reads and validates a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return NewYAMLLoader(f).Load()
}
