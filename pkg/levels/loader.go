package levels

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"isogrid-server/pkg/logger"
)

const schemaURL = "https://isogrid.local/schemas/level.schema.json"

//go:embed schema/level.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func levelSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("level schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Parse разбирает YAML уровня: схема, затем раскладка, затем семантика.
func Parse(raw []byte) (*Level, error) {
	if err := validateAgainstSchema(raw); err != nil {
		return nil, err
	}

	var l Level
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode level: %v: %w", err, ErrInvalidLevel)
	}
	if err := l.expandTiles(); err != nil {
		return nil, err
	}
	l.Normalize()
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// validateAgainstSchema прогоняет документ через JSON-схему.
// YAML сначала переводится в JSON-совместимое дерево (числа как json.Number).
func validateAgainstSchema(raw []byte) error {
	s, err := levelSchema()
	if err != nil {
		return err
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode level: %v: %w", err, ErrInvalidLevel)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("level to json: %v: %w", err, ErrInvalidLevel)
	}

	dec := json.NewDecoder(bytes.NewReader(asJSON))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return fmt.Errorf("level to json: %v: %w", err, ErrInvalidLevel)
	}

	if err := s.Validate(tree); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidLevel)
	}
	return nil
}

// LoadFile читает один файл уровня.
func LoadFile(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return l, nil
}

// LoadDir загружает все *.yaml / *.yml из каталога и проверяет связность варпов.
func LoadDir(dir string) (map[int]*Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("levels dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(map[int]*Level, len(names))
	for _, name := range names {
		l, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, dup := out[l.ID]; dup {
			return nil, fmt.Errorf("%s: level id %d already used by %q: %w", name, l.ID, prev.Name, ErrInvalidLevel)
		}
		out[l.ID] = l
		logger.Component("levels").WithField("file", name).Debugf("Loaded level %d %q (%dx%d)", l.ID, l.Name, l.Width, l.Height)
	}

	if err := CheckWarpTargets(out); err != nil {
		return nil, err
	}
	return out, nil
}
