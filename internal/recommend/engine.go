package recommend

import (
	"math/rand/v2"
	"sort"
	"strings"
)

const (
	// MaxRecommendations caps the survivors kept after filtering, before scoring.
	MaxRecommendations = 4
	confidenceFloor    = 65
	suitabilityFloor   = 60
	jitterSpan         = 5
)

// ColorRecommendation is a preset scored for a single request.
type ColorRecommendation struct {
	ColorPreset
	Confidence  float64
	Suitability float64
}

// Source supplies uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Rule reports whether a preset must be dropped for the given answers.
type Rule struct {
	Name     string
	Excludes func(Answers, ColorPreset) bool
}

// DefaultRules are the salon's exclusion rules. The lifestyle rules match on the display
// name rather than a preset attribute.
var DefaultRules = []Rule{
	{Name: "low-maintenance-excludes-high", Excludes: func(a Answers, p ColorPreset) bool {
		return a.Maintenance == LevelLow && p.Maintenance == LevelHigh
	}},
	{Name: "high-maintenance-excludes-low", Excludes: func(a Answers, p ColorPreset) bool {
		return a.Maintenance == LevelHigh && p.Maintenance == LevelLow
	}},
	{Name: "professional-excludes-burgundy", Excludes: func(a Answers, p ColorPreset) bool {
		return a.Lifestyle == LifestyleProfessional && strings.Contains(p.Name, "Burgundy")
	}},
	{Name: "creative-excludes-ash", Excludes: func(a Answers, p ColorPreset) bool {
		return a.Lifestyle == LifestyleCreative && strings.Contains(p.Name, "Ash")
	}},
	{Name: "natural-excludes-ombre", Excludes: func(a Answers, p ColorPreset) bool {
		return a.DesiredVibe == VibeNatural && p.Category == CategoryOmbre
	}},
	{Name: "dramatic-excludes-low-maintenance", Excludes: func(a Answers, p ColorPreset) bool {
		return a.DesiredVibe == VibeDramatic && p.Maintenance == LevelLow
	}},
}

// Engine filters, jitters and ranks presets.
type Engine struct {
	source Source
	rules  []Rule
	limit  int
}

// Option customises an Engine.
type Option func(*Engine)

// WithSource replaces the random source used for jitter.
func WithSource(src Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.source = src
		}
	}
}

// WithRules replaces the exclusion rules.
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// NewEngine builds an engine with the default rules and a process-wide random source.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		source: globalSource{},
		rules:  DefaultRules,
		limit:  MaxRecommendations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend returns at most four presets ranked by jittered confidence. The first four
// survivors in catalog order are scored; later survivors are never considered. An empty
// result means nothing matched and is not an error.
func (e *Engine) Recommend(answers Answers, catalog []ColorPreset) []ColorRecommendation {
	survivors := make([]ColorPreset, 0, e.limit)
	for _, p := range catalog {
		if e.excluded(answers, p) {
			continue
		}
		survivors = append(survivors, p)
		if len(survivors) == e.limit {
			break
		}
	}

	out := make([]ColorRecommendation, 0, len(survivors))
	for _, p := range survivors {
		out = append(out, ColorRecommendation{
			ColorPreset: p,
			Confidence:  max(confidenceFloor, float64(p.BaseConfidence)+e.jitter()),
			Suitability: max(suitabilityFloor, float64(p.BaseSuitability)+e.jitter()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// Excluded reports the names of the rules that drop p for answers.
func (e *Engine) Excluded(answers Answers, p ColorPreset) []string {
	var names []string
	for _, r := range e.rules {
		if r.Excludes(answers, p) {
			names = append(names, r.Name)
		}
	}
	return names
}

func (e *Engine) excluded(answers Answers, p ColorPreset) bool {
	for _, r := range e.rules {
		if r.Excludes(answers, p) {
			return true
		}
	}
	return false
}

// jitter maps a [0,1) draw onto [-5, +5).
func (e *Engine) jitter() float64 {
	return e.source.Float64()*2*jitterSpan - jitterSpan
}

// Best returns the top recommendation, or false when recs is empty.
func Best(recs []ColorRecommendation) (ColorRecommendation, bool) {
	if len(recs) == 0 {
		return ColorRecommendation{}, false
	}
	return recs[0], true
}
