package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type ModelID string

const (
	ModelLlama31_8B     ModelID = "llama-3.1-8b-instant"
	ModelLlama33_70B    ModelID = "llama-3.3-70b-versatile"
	ModelGPTOSS120B     ModelID = "openai/gpt-oss-120b"
	ModelGPTOSS20B      ModelID = "openai/gpt-oss-20b"
	ModelLlama4Maverick ModelID = "meta-llama/llama-4-maverick-17b-128e-instruct"
	ModelLlama4Scout    ModelID = "meta-llama/llama-4-scout-17b-16e-instruct"
	ModelKimiK2         ModelID = "moonshotai/kimi-k2-instruct-0905"
	ModelQwen3_32B      ModelID = "qwen/qwen3-32b"

	DefaultModelID = ModelLlama31_8B
)

//nolint:gochecknoglobals // Enumeration order is the display order.
var knownModelIDs = []ModelID{
	ModelLlama31_8B,
	ModelLlama33_70B,
	ModelGPTOSS120B,
	ModelGPTOSS20B,
	ModelLlama4Maverick,
	ModelLlama4Scout,
	ModelKimiK2,
	ModelQwen3_32B,
}

type ModelCategory string

const (
	CategoryProduction ModelCategory = "production"
	CategoryPreview    ModelCategory = "preview"
)

var ErrUnknownModel = errors.New("unknown model")

//go:embed models.yaml
var catalogYAML []byte

type ModelConfig struct {
	ID          ModelID       `yaml:"id"          json:"id"`
	Name        string        `yaml:"name"        json:"name"`
	ContextSize string        `yaml:"context"     json:"contextSize"`
	Description string        `yaml:"description" json:"description"`
	Category    ModelCategory `yaml:"category"    json:"category"`
	Speed       string        `yaml:"speed"       json:"speed"`
	Cost        string        `yaml:"cost"        json:"cost"`
}

// Label is the short model name shown next to analytics.
func (m ModelConfig) Label() string {
	id := string(m.ID)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}

	return id
}

// FileSafeID replaces path separators so the id can be used in file names.
func (m ModelConfig) FileSafeID() string {
	return strings.ReplaceAll(string(m.ID), "/", "_")
}

// Catalog is the read-only set of supported models.
type Catalog struct {
	models []ModelConfig
	byID   map[ModelID]ModelConfig
}

// LoadCatalog parses the embedded catalog and validates it against the
// enumerated model ids.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

func MustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(fmt.Sprintf("load model catalog: %v", err))
	}

	return c
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var raw struct {
		Models []ModelConfig `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	byID := make(map[ModelID]ModelConfig, len(raw.Models))
	var errs []error

	for i, m := range raw.Models {
		m.ID = ModelID(strings.TrimSpace(string(m.ID)))
		m.Name = strings.TrimSpace(m.Name)

		if !slices.Contains(knownModelIDs, m.ID) {
			errs = append(errs, fmt.Errorf("entry %d: %w: %q", i, ErrUnknownModel, m.ID))
			continue
		}
		if _, ok := byID[m.ID]; ok {
			errs = append(errs, fmt.Errorf("entry %d: duplicate model %q", i, m.ID))
			continue
		}
		if m.Category != CategoryProduction && m.Category != CategoryPreview {
			errs = append(errs, fmt.Errorf("entry %d: invalid category %q", i, m.Category))
			continue
		}
		if m.Name == "" {
			m.Name = string(m.ID)
		}

		byID[m.ID] = m
	}

	for _, id := range knownModelIDs {
		if _, ok := byID[id]; !ok {
			errs = append(errs, fmt.Errorf("model %q is missing from catalog", id))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	models := make([]ModelConfig, 0, len(knownModelIDs))
	for _, id := range knownModelIDs {
		models = append(models, byID[id])
	}

	return &Catalog{models: models, byID: byID}, nil
}

// Models returns the catalog in display order.
func (c *Catalog) Models() []ModelConfig {
	return slices.Clone(c.models)
}

func (c *Catalog) ByCategory(category ModelCategory) []ModelConfig {
	var models []ModelConfig
	for _, m := range c.models {
		if m.Category == category {
			models = append(models, m)
		}
	}

	return models
}

func (c *Catalog) Lookup(id string) (ModelConfig, error) {
	m, ok := c.byID[ModelID(strings.TrimSpace(id))]
	if !ok {
		return ModelConfig{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}

	return m, nil
}

// Resolve is Lookup with an empty id meaning the default model.
func (c *Catalog) Resolve(id string) (ModelConfig, error) {
	if strings.TrimSpace(id) == "" {
		return c.Lookup(string(DefaultModelID))
	}

	return c.Lookup(id)
}
