package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var (
	// ErrTemplateNotFound is returned when no template has the requested ID
	ErrTemplateNotFound = port.ErrTemplateNotFound

	// ErrInvalidTemplate is returned when a template file fails validation
	ErrInvalidTemplate = errors.New("invalid template")
)

var validKinds = map[string]bool{
	entity.FieldKindText:     true,
	entity.FieldKindTextarea: true,
	entity.FieldKindNumber:   true,
	entity.FieldKindDate:     true,
	entity.FieldKindSelect:   true,
}

// Catalog is a read-only set of templates loaded at startup.
type Catalog struct {
	templates map[string]*entity.Template
	order     []string
}

// Load reads every *.yaml / *.yml file in dir on top of the built-in templates. A missing
// dir is not an error; a file in dir with the same ID replaces the built-in one.
func Load(dir string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{templates: make(map[string]*entity.Template)}

	builtin, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to open built-in templates: %w", err)
	}
	if err := c.loadFS(builtin, false); err != nil {
		return nil, err
	}

	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := c.loadFS(os.DirFS(dir), true); err != nil {
				return nil, err
			}
		} else {
			logger.Warn("Template directory not found, using built-in templates only", zap.String("dir", dir))
		}
	}

	c.order = make([]string, 0, len(c.templates))
	for id := range c.templates {
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)

	logger.Info("Template catalog loaded", zap.Int("templates", len(c.order)), zap.Strings("ids", c.order))
	return c, nil
}

// LoadFS builds a catalog from the templates in fsys only.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*entity.Template)}
	if err := c.loadFS(fsys, false); err != nil {
		return nil, err
	}
	for id := range c.templates {
		c.order = append(c.order, id)
	}
	sort.Strings(c.order)
	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS, override bool) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	seen := make(map[string]string)
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", e.Name(), err)
		}
		tpl, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		if prev, dup := seen[tpl.ID]; dup {
			return fmt.Errorf("%w: id %q defined in both %s and %s", ErrInvalidTemplate, tpl.ID, prev, e.Name())
		}
		seen[tpl.ID] = e.Name()
		if _, exists := c.templates[tpl.ID]; exists && !override {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTemplate, tpl.ID)
		}
		c.templates[tpl.ID] = tpl
	}
	return nil
}

// Parse decodes and validates one YAML template.
func Parse(data []byte) (*entity.Template, error) {
	var tpl entity.Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	tpl.ID = strings.TrimSpace(tpl.ID)
	if tpl.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidTemplate)
	}
	if tpl.PhotoLimit < 0 {
		return nil, fmt.Errorf("%w: photo_limit must not be negative", ErrInvalidTemplate)
	}

	keys := make(map[string]bool, len(tpl.Fields))
	for i := range tpl.Fields {
		f := &tpl.Fields[i]
		f.Key = strings.TrimSpace(f.Key)
		if f.Key == "" {
			return nil, fmt.Errorf("%w: field %d has no key", ErrInvalidTemplate, i+1)
		}
		if keys[f.Key] {
			return nil, fmt.Errorf("%w: duplicate field key %q", ErrInvalidTemplate, f.Key)
		}
		keys[f.Key] = true
		if f.Kind == "" {
			f.Kind = entity.FieldKindText
		}
		if !validKinds[f.Kind] {
			return nil, fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidTemplate, f.Key, f.Kind)
		}
	}
	return &tpl, nil
}

// List returns every template ordered by ID.
func (c *Catalog) List(_ context.Context) ([]*entity.Template, error) {
	out := make([]*entity.Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.templates[id]))
	}
	return out, nil
}

// Get returns the template with the given ID.
func (c *Catalog) Get(_ context.Context, id string) (*entity.Template, error) {
	tpl, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return clone(tpl), nil
}

// templates are handed out as copies so callers cannot mutate the catalog
func clone(t *entity.Template) *entity.Template {
	cp := *t
	cp.Fields = make([]entity.FieldDef, len(t.Fields))
	for i, f := range t.Fields {
		f.Options = append([]string(nil), f.Options...)
		cp.Fields[i] = f
	}
	return &cp
}
