package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles reading character sheets from a fallback hierarchy of directories.
type Loader struct {
	dataDirs []string
}

// NewLoader initializes a new Data Loader with the given data directory fallback hierarchy
func NewLoader(dataDirs []string) *Loader {
	return &Loader{
		dataDirs: dataDirs,
	}
}

// LoadSheet finds characters/<name>.yaml in the first data directory that has it.
func (l *Loader) LoadSheet(name string) (*Sheet, error) {
	ref := filepath.Join("characters", fmt.Sprintf("%s.yaml", strings.ToLower(name)))
	for _, dir := range l.dataDirs {
		sheet, err := ReadSheet(filepath.Join(dir, ref))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return sheet, err
	}
	return nil, fmt.Errorf("could not find or open reference %s in any available data directory", ref)
}

// ReadSheet decodes one YAML character sheet.
func ReadSheet(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheet Sheet
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&sheet); err != nil {
		return nil, fmt.Errorf("failed to decode yaml reference %s: %w", path, err)
	}
	if strings.TrimSpace(sheet.Name) == "" {
		return nil, fmt.Errorf("sheet %s has no name", path)
	}
	return &sheet, nil
}
