package recommend

import (
	"errors"
	"fmt"
)

// ErrInvalidValue reports an answer value outside the question's closed option set.
var ErrInvalidValue = errors.New("recommend: invalid answer value")

// Field identifies one questionnaire answer.
type Field string

const (
	FieldSkinTone         Field = "skinTone"
	FieldLifestyle        Field = "lifestyle"
	FieldMaintenance      Field = "maintenance"
	FieldCurrentHairColor Field = "currentHairColor"
	FieldDesiredVibe      Field = "desiredVibe"
	FieldExperience       Field = "experience"
)

// Fields lists every answer field in questionnaire order.
var Fields = []Field{
	FieldSkinTone,
	FieldLifestyle,
	FieldMaintenance,
	FieldCurrentHairColor,
	FieldDesiredVibe,
	FieldExperience,
}

type SkinTone string

const (
	SkinFair   SkinTone = "fair"
	SkinMedium SkinTone = "medium"
	SkinOlive  SkinTone = "olive"
	SkinDark   SkinTone = "dark"
)

type Lifestyle string

const (
	LifestyleProfessional Lifestyle = "professional"
	LifestyleCreative     Lifestyle = "creative"
	LifestyleCasual       Lifestyle = "casual"
	LifestyleGlamorous    Lifestyle = "glamorous"
)

// Level is shared by the maintenance answer and the preset maintenance level.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type HairColor string

const (
	HairBlonde   HairColor = "blonde"
	HairBrunette HairColor = "brunette"
	HairBlack    HairColor = "black"
	HairRed      HairColor = "red"
	HairOther    HairColor = "other"
)

type Vibe string

const (
	VibeNatural  Vibe = "natural"
	VibeBold     Vibe = "bold"
	VibeSubtle   Vibe = "subtle"
	VibeDramatic Vibe = "dramatic"
)

type Experience string

const (
	ExperienceFirstTime  Experience = "first-time"
	ExperienceOccasional Experience = "occasional"
	ExperienceRegular    Experience = "regular"
	ExperienceExpert     Experience = "expert"
)

// Options returns the closed set of values accepted for a field, in display order.
func Options(field Field) []string {
	switch field {
	case FieldSkinTone:
		return []string{string(SkinFair), string(SkinMedium), string(SkinOlive), string(SkinDark)}
	case FieldLifestyle:
		return []string{string(LifestyleProfessional), string(LifestyleCreative), string(LifestyleCasual), string(LifestyleGlamorous)}
	case FieldMaintenance:
		return []string{string(LevelLow), string(LevelMedium), string(LevelHigh)}
	case FieldCurrentHairColor:
		return []string{string(HairBlonde), string(HairBrunette), string(HairBlack), string(HairRed), string(HairOther)}
	case FieldDesiredVibe:
		return []string{string(VibeNatural), string(VibeBold), string(VibeSubtle), string(VibeDramatic)}
	case FieldExperience:
		return []string{string(ExperienceFirstTime), string(ExperienceOccasional), string(ExperienceRegular), string(ExperienceExpert)}
	}
	return nil
}

// Answers holds one categorical value per question. An empty value means unanswered.
type Answers struct {
	SkinTone         SkinTone   `json:"skinTone,omitempty"`
	Lifestyle        Lifestyle  `json:"lifestyle,omitempty"`
	Maintenance      Level      `json:"maintenance,omitempty"`
	CurrentHairColor HairColor  `json:"currentHairColor,omitempty"`
	DesiredVibe      Vibe       `json:"desiredVibe,omitempty"`
	Experience       Experience `json:"experience,omitempty"`
}

// Set records value for field after checking it against the field's options.
func (a *Answers) Set(field Field, value string) error {
	if !validOption(field, value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
	}
	switch field {
	case FieldSkinTone:
		a.SkinTone = SkinTone(value)
	case FieldLifestyle:
		a.Lifestyle = Lifestyle(value)
	case FieldMaintenance:
		a.Maintenance = Level(value)
	case FieldCurrentHairColor:
		a.CurrentHairColor = HairColor(value)
	case FieldDesiredVibe:
		a.DesiredVibe = Vibe(value)
	case FieldExperience:
		a.Experience = Experience(value)
	}
	return nil
}

// Get returns the recorded value for field, or "" when unanswered.
func (a Answers) Get(field Field) string {
	switch field {
	case FieldSkinTone:
		return string(a.SkinTone)
	case FieldLifestyle:
		return string(a.Lifestyle)
	case FieldMaintenance:
		return string(a.Maintenance)
	case FieldCurrentHairColor:
		return string(a.CurrentHairColor)
	case FieldDesiredVibe:
		return string(a.DesiredVibe)
	case FieldExperience:
		return string(a.Experience)
	}
	return ""
}

// Complete reports whether every field holds a valid value.
func (a Answers) Complete() bool {
	for _, f := range Fields {
		if !validOption(f, a.Get(f)) {
			return false
		}
	}
	return true
}

// Missing lists the unanswered fields in questionnaire order.
func (a Answers) Missing() []Field {
	var out []Field
	for _, f := range Fields {
		if a.Get(f) == "" {
			out = append(out, f)
		}
	}
	return out
}

func validOption(field Field, value string) bool {
	if value == "" {
		return false
	}
	for _, opt := range Options(field) {
		if opt == value {
			return true
		}
	}
	return false
}
