package recommend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups presets by coloring technique.
type Category string

const (
	CategoryHighlights Category = "highlights"
	CategoryFullColor  Category = "full-color"
	CategoryBalayage   Category = "balayage"
	CategoryOmbre      Category = "ombre"
)

func (c Category) valid() bool {
	switch c {
	case CategoryHighlights, CategoryFullColor, CategoryBalayage, CategoryOmbre:
		return true
	}
	return false
}

func (l Level) valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// ColorPreset is a catalog entry resolved for one locale.
type ColorPreset struct {
	ID              string
	Name            string
	Description     string
	HexCode         string
	Category        Category
	Maintenance     Level
	Process         string
	EstimatedTime   string
	Price           string
	BaseConfidence  int
	BaseSuitability int
}

// Translator looks up user-facing strings by key.
type Translator interface {
	T(lang, key string) string
}

// PresetEntry is the locale-independent catalog row. User-facing fields are derived from Key.
type PresetEntry struct {
	ID          string   `yaml:"id"`
	Key         string   `yaml:"key"`
	HexCode     string   `yaml:"hex"`
	Category    Category `yaml:"category"`
	Maintenance Level    `yaml:"maintenance"`
	Confidence  int      `yaml:"confidence"`
	Suitability int      `yaml:"suitability"`
}

// Catalog is an immutable ordered list of presets. Order matters: the engine truncates
// in declaration order.
type Catalog struct {
	entries []PresetEntry
}

var defaultEntries = []PresetEntry{
	{ID: "caramel-highlights", Key: "caramelHighlights", HexCode: "#D2691E", Category: CategoryHighlights, Maintenance: LevelMedium, Confidence: 92, Suitability: 85},
	{ID: "chocolate-brown", Key: "chocolateBrown", HexCode: "#7B3F00", Category: CategoryFullColor, Maintenance: LevelLow, Confidence: 88, Suitability: 90},
	{ID: "ash-blonde", Key: "ashBlonde", HexCode: "#C4B58D", Category: CategoryFullColor, Maintenance: LevelHigh, Confidence: 78, Suitability: 75},
	{ID: "strawberry-blonde", Key: "strawberryBlonde", HexCode: "#FF7F50", Category: CategoryBalayage, Maintenance: LevelMedium, Confidence: 85, Suitability: 82},
	{ID: "burgundy-ombre", Key: "burgundyOmbre", HexCode: "#800020", Category: CategoryOmbre, Maintenance: LevelHigh, Confidence: 70, Suitability: 65},
	{ID: "copper-red", Key: "copperRed", HexCode: "#B87333", Category: CategoryFullColor, Maintenance: LevelHigh, Confidence: 82, Suitability: 78},
}

// DefaultCatalog returns the salon's six-preset catalog.
func DefaultCatalog() Catalog {
	return Catalog{entries: append([]PresetEntry(nil), defaultEntries...)}
}

// NewCatalog validates entries and returns a catalog preserving their order.
func NewCatalog(entries []PresetEntry) (Catalog, error) {
	if len(entries) == 0 {
		return Catalog{}, errors.New("recommend: catalog is empty")
	}
	seen := make(map[string]struct{}, len(entries))
	var problems []string
	for i, e := range entries {
		id := strings.TrimSpace(e.ID)
		switch {
		case id == "":
			problems = append(problems, fmt.Sprintf("entry %d: id is required", i))
			continue
		case strings.TrimSpace(e.Key) == "":
			problems = append(problems, fmt.Sprintf("%s: key is required", id))
		case !e.Category.valid():
			problems = append(problems, fmt.Sprintf("%s: unknown category %q", id, e.Category))
		case !e.Maintenance.valid():
			problems = append(problems, fmt.Sprintf("%s: unknown maintenance level %q", id, e.Maintenance))
		case e.Confidence < 0 || e.Confidence > 100:
			problems = append(problems, fmt.Sprintf("%s: confidence %d out of range", id, e.Confidence))
		case e.Suitability < 0 || e.Suitability > 100:
			problems = append(problems, fmt.Sprintf("%s: suitability %d out of range", id, e.Suitability))
		}
		if _, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", id))
		}
		seen[id] = struct{}{}
	}
	if len(problems) > 0 {
		return Catalog{}, fmt.Errorf("recommend: invalid catalog: %s", strings.Join(problems, "; "))
	}
	return Catalog{entries: append([]PresetEntry(nil), entries...)}, nil
}

type catalogFile struct {
	Presets []PresetEntry `yaml:"presets"`
}

// LoadCatalog parses a YAML catalog document of the form `presets: [...]`.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Catalog{}, fmt.Errorf("recommend: parse catalog: %w", err)
	}
	return NewCatalog(doc.Presets)
}

// LoadCatalogFile reads a YAML catalog from path. An empty path yields the default catalog.
func LoadCatalogFile(path string) (Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("recommend: open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Entries returns a copy of the catalog rows.
func (c Catalog) Entries() []PresetEntry {
	return append([]PresetEntry(nil), c.entries...)
}

// Len reports the number of presets.
func (c Catalog) Len() int { return len(c.entries) }

// Localize resolves display strings for lang, keeping catalog order.
func (c Catalog) Localize(t Translator, lang string) []ColorPreset {
	out := make([]ColorPreset, 0, len(c.entries))
	for _, e := range c.entries {
		prefix := "presets." + e.Key + "."
		out = append(out, ColorPreset{
			ID:              e.ID,
			Name:            t.T(lang, prefix+"name"),
			Description:     t.T(lang, prefix+"description"),
			HexCode:         e.HexCode,
			Category:        e.Category,
			Maintenance:     e.Maintenance,
			Process:         t.T(lang, prefix+"process"),
			EstimatedTime:   t.T(lang, prefix+"estimatedTime"),
			Price:           t.T(lang, prefix+"price"),
			BaseConfidence:  e.Confidence,
			BaseSuitability: e.Suitability,
		})
	}
	return out
}
