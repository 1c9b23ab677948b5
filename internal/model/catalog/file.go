package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Branches []Branch `yaml:"branches"`
}

// LoadFile reads a YAML catalog document and returns a MemoryStore.
//
//	branches:
//	  - id: centro
//	    businessType: cafe
//	    entries:
//	      - name: Café Americano
//	        aliases: [americano]
//	        price: 40
//	        category: bebidas calientes
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*MemoryStore, error) {
	var doc fileDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate(doc.Branches); err != nil {
		return nil, err
	}
	return NewMemoryStore(doc.Branches), nil
}

func validate(branches []Branch) error {
	if len(branches) == 0 {
		return errors.New("catalog has no branches")
	}
	seen := make(map[string]bool, len(branches))
	for i, b := range branches {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			return fmt.Errorf("branch #%d: id is required", i+1)
		}
		if seen[id] {
			return fmt.Errorf("branch %q declared twice", id)
		}
		seen[id] = true
		for j, e := range b.Entries {
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("branch %q entry #%d: name is required", id, j+1)
			}
			if e.Price < 0 {
				return fmt.Errorf("branch %q entry %q: negative price", id, e.Name)
			}
		}
	}
	return nil
}
