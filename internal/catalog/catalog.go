// Package catalog exposes the contract template library on disk. Each
// category maps to a folder of .docx, .txt or .md samples.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ailawyer/internal/apperr"
	"ailawyer/internal/pkg/textextract"
	"ailawyer/internal/platform/logger"
	"ailawyer/internal/prompt"
)

const manifestName = "catalog.yaml"

type categoryDef struct {
	Name   string `yaml:"name"`
	Folder string `yaml:"folder"`
	Icon   string `yaml:"icon"`
}

var defaultCategories = []categoryDef{
	{Name: "Аренда", Folder: "аренда", Icon: "🏠"},
	{Name: "Безвозмездное пользование", Folder: "безвозмедное пользование", Icon: "🎁"},
	{Name: "Дарение", Folder: "дарение", Icon: "💝"},
	{Name: "Займ (кредит)", Folder: "Займ (кредит)", Icon: "💰"},
	{Name: "Залог", Folder: "залог", Icon: "🔒"},
	{Name: "Купля-продажа, поставка, контрактация", Folder: "Купля-продажа, поставка, контрактация", Icon: "🛒"},
	{Name: "Подряд", Folder: "подряд", Icon: "🔨"},
	{Name: "Страхование", Folder: "страхование", Icon: "🛡️"},
	{Name: "Услуги", Folder: "услуги", Icon: "⚙️"},
}

type Category struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}

type TemplateInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type Catalog struct {
	dir        string
	categories []categoryDef
	log        *logger.Logger
}

// New reads dir/catalog.yaml when present; otherwise the built-in category
// list is used.
func New(dir string, log *logger.Logger) (*Catalog, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := &Catalog{dir: dir, categories: defaultCategories, log: log}

	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("read catalog manifest: %w", err)
	}
	var manifest struct {
		Categories []categoryDef `yaml:"categories"`
	}
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse catalog manifest: %w", err)
	}
	if len(manifest.Categories) > 0 {
		for i, def := range manifest.Categories {
			if def.Name == "" || def.Folder == "" {
				return nil, fmt.Errorf("catalog manifest entry %d needs name and folder", i)
			}
			if def.Icon == "" {
				manifest.Categories[i].Icon = "📄"
			}
		}
		c.categories = manifest.Categories
	}
	return c, nil
}

func (c *Catalog) lookup(name string) (categoryDef, bool) {
	for _, def := range c.categories {
		if def.Name == name {
			return def, true
		}
	}
	return categoryDef{}, false
}

// ListCategories returns categories whose folder exists, in catalog order.
func (c *Catalog) ListCategories() []Category {
	out := make([]Category, 0, len(c.categories))
	for _, def := range c.categories {
		files, err := c.files(def)
		if err != nil {
			continue
		}
		out = append(out, Category{Name: def.Name, Count: len(files), Description: def.Icon})
	}
	return out
}

// Exists reports whether category is known and has at least one template.
func (c *Catalog) Exists(category string) bool {
	def, ok := c.lookup(category)
	if !ok {
		return false
	}
	files, err := c.files(def)
	return err == nil && len(files) > 0
}

func (c *Catalog) Templates(category string) ([]TemplateInfo, error) {
	def, ok := c.lookup(category)
	if !ok {
		return nil, fmt.Errorf("unknown contract category %q: %w", category, apperr.ErrInvalidInput)
	}
	files, err := c.files(def)
	if err != nil {
		return []TemplateInfo{}, nil
	}
	out := make([]TemplateInfo, 0, len(files))
	for _, path := range files {
		out = append(out, TemplateInfo{Name: stem(path), Path: path})
	}
	return out, nil
}

// Load reads every template of category. Unreadable files are logged and
// skipped; a category left with no text is invalid input.
func (c *Catalog) Load(category string) ([]prompt.Template, error) {
	infos, err := c.Templates(category)
	if err != nil {
		return nil, err
	}
	out := make([]prompt.Template, 0, len(infos))
	for _, info := range infos {
		raw, err := os.ReadFile(info.Path)
		if err != nil {
			c.log.Warn("read template failed", "path", info.Path, "err", err)
			continue
		}
		text, err := textextract.FromFile(info.Path, raw)
		if err != nil {
			c.log.Warn("extract template failed", "path", info.Path, "err", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, prompt.Template{Name: info.Name, Text: text})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("category %q has no usable templates: %w", category, apperr.ErrInvalidInput)
	}
	return out, nil
}

func (c *Catalog) files(def categoryDef) ([]string, error) {
	folder := filepath.Join(c.dir, def.Folder)
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") || !textextract.Supported(e.Name()) || strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(folder, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
