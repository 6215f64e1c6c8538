package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"rcinit/internal/config"
	"rcinit/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Encode serialises definitions as a YAML mapping from service name to
// definition. Keys are sorted, so encoding the result of Decode reproduces the
// original bytes for any file produced by Encode.
func Encode(defs []Definition) ([]byte, error) {
	records := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if _, dup := records[def.Name]; dup {
			return nil, fmt.Errorf("duplicate service %s", def.Name)
		}
		records[def.Name] = def
	}

	if len(records) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to marshal services to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal services to YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// RecordError reports an invalid record of the registry file.
type RecordError struct {
	Key string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q: %v", e.Key, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Decode parses the YAML mapping written by Encode and returns the
// definitions sorted by name. A record without a name takes its key; a record
// whose name differs from its key is rejected. Every invalid record is
// reported, as *RecordError values joined in key order.
func Decode(data []byte) ([]Definition, error) {
	records := make(map[string]Definition)
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defs := make([]Definition, 0, len(records))
	var errs []error
	for _, key := range keys {
		def := records[key]
		if def.Name == "" {
			def.Name = key
		}
		if def.Name != key {
			errs = append(errs, &RecordError{Key: key, Err: fmt.Errorf("declares name %q", def.Name)})
			continue
		}
		if err := def.Validate(); err != nil {
			errs = append(errs, &RecordError{Key: key, Err: err})
			continue
		}
		defs = append(defs, def)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return defs, nil
}

// Persistence saves and loads the registry through a config.Storage.
type Persistence struct {
	storage *config.Storage
	file    string
}

// NewPersistence creates a persistence helper for the given registry file.
func NewPersistence(storage *config.Storage, file string) *Persistence {
	return &Persistence{
		storage: storage,
		file:    file,
	}
}

// Path returns the location of the registry file.
func (p *Persistence) Path() string {
	return p.storage.Path(p.file)
}

// LoadDefinitions reads the registry file. A missing file yields no definitions.
func (p *Persistence) LoadDefinitions() ([]Definition, error) {
	data, err := p.storage.ReadFile(p.file)
	if err != nil {
		if errors.Is(err, config.ErrNotExist) {
			logging.Info("ServicePersistence", "No registry file at %s, starting empty", p.Path())
			return nil, nil
		}
		return nil, err
	}

	defs, err := Decode(data)
	if err != nil {
		return nil, p.configurationError(err)
	}

	logging.Info("ServicePersistence", "Loaded %d service definitions from %s", len(defs), p.Path())
	return defs, nil
}

// configurationError converts a Decode failure into a config.ConfigurationError,
// or a config.ConfigurationErrorCollection holding one entry per bad record.
func (p *Persistence) configurationError(err error) error {
	path := p.Path()
	name := filepath.Base(path)

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return config.NewConfigurationError(path, name, "registry", "services", "parse", err.Error())
	}

	collection := config.NewConfigurationErrorCollection()
	for _, e := range joined.Unwrap() {
		cfgErr := config.NewConfigurationError(path, name, "registry", "services", "validation", e.Error())
		var rec *RecordError
		if errors.As(e, &rec) {
			cfgErr.Details = rec.Key
		}
		collection.Add(cfgErr)
	}
	logging.Warn("ServicePersistence", "Found %d invalid records in %s", collection.Count(), path)
	return *collection
}

// Load replaces the content of reg with the persisted definitions.
func (p *Persistence) Load(reg *Registry) error {
	defs, err := p.LoadDefinitions()
	if err != nil {
		return err
	}
	return reg.Replace(defs)
}

// Save writes every definition of reg to the registry file atomically.
func (p *Persistence) Save(reg *Registry) error {
	data, err := Encode(reg.Definitions())
	if err != nil {
		return err
	}
	if err := p.storage.WriteFile(p.file, data); err != nil {
		return fmt.Errorf("failed to persist service registry: %w", err)
	}
	return nil
}
