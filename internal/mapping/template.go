package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"xpns-ingestion-service/pkg/errors"
	"xpns-ingestion-service/pkg/logger"

	"gopkg.in/yaml.v3"
)

// Template is a named, reusable column mapping saved by a user so the next
// statement from the same bank skips the mapping step.
type Template struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	SavedAt     time.Time     `yaml:"saved_at"`
	Columns     ColumnMapping `yaml:"columns"`
}

// Validate checks the template's own fields and the structural soundness of
// its mapping. Semantic completeness is still the caller's Validate gate.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name cannot be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("template '%s' has no column entries", t.Name)
	}
	return t.Columns.Validate()
}

// TemplateStore persists mapping templates as YAML files in a directory, one
// file per template.
type TemplateStore struct {
	dir    string
	logger logger.Logger
}

// NewTemplateStore creates a store rooted at dir, creating it if needed.
func NewTemplateStore(dir string) (*TemplateStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "template_dir", dir, nil).
			WithSuggestion("provide a directory for mapping templates")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.FileError(errors.CodeDirectoryError, dir, err)
	}

	return &TemplateStore{
		dir:    dir,
		logger: logger.GetGlobalLogger().WithComponent("template_store"),
	}, nil
}

// Save writes a template to disk, overwriting any previous template with the
// same name.
func (s *TemplateStore) Save(t *Template) error {
	if err := t.Validate(); err != nil {
		return errors.MappingError(errors.CodeInvalidMapping, err.Error(), err).
			WithSuggestion("fix the template definition and try again")
	}

	if t.SavedAt.IsZero() {
		t.SavedAt = time.Now().UTC()
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return errors.InternalError(errors.CodeUnexpectedError, "template_marshal", err)
	}

	path := s.path(t.Name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}

	s.logger.WithFields(logger.Fields{
		"template": t.Name,
		"columns":  len(t.Columns),
		"path":     path,
	}).Info("Saved mapping template")

	return nil
}

// Load reads a template by name and re-validates it before returning it.
// Templates edited by hand are not trusted.
func (s *TemplateStore) Load(name string) (*Template, error) {
	path := s.path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err).
				WithSuggestion(fmt.Sprintf("no template named '%s'; save one first", name))
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "not valid template YAML", err)
	}

	if err := t.Validate(); err != nil {
		return nil, errors.MappingError(errors.CodeInvalidMapping, err.Error(), err).
			WithContext("template", name)
	}

	return &t, nil
}

// List returns the names of all stored templates in sorted order.
func (s *TemplateStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.FileError(errors.CodeDirectoryError, s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)

	return names, nil
}

func (s *TemplateStore) path(name string) string {
	// Flatten path separators out of user-supplied names.
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return filepath.Join(s.dir, safe+".yaml")
}
