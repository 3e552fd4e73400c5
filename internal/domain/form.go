// Package domain contains the core types of the bio generator form.
package domain

import (
	"fmt"
	"unicode/utf8"
)

// MaxExperienceLength is the maximum number of characters accepted in the
// experience field.
const MaxExperienceLength = 1000

// Field names a form field.
type Field string

// Form fields.
const (
	FieldProfession Field = "profession"
	FieldExperience Field = "experience"
	FieldTone       Field = "tone"
	FieldFocus      Field = "focus"
	FieldSkills     Field = "skills"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldProfession, FieldTone, FieldExperience, FieldFocus, FieldSkills}

// ParseField validates a field name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Tone is the desired writing tone of the bio.
type Tone string

// Supported tones.
const (
	ToneFormal      Tone = "formal"
	ToneCreative    Tone = "criativo"
	ToneInspiring   Tone = "inspirador"
	ToneTechnical   Tone = "tecnico"
	DefaultTone          = ToneFormal
)

// Focus is the main theme the bio should highlight.
type Focus string

// Supported focuses.
const (
	FocusLeadership    Focus = "lideranca"
	FocusInnovation    Focus = "inovacao"
	FocusResults       Focus = "resultados"
	FocusCollaboration Focus = "colaboracao"
	DefaultFocus             = FocusResults
)

// Option describes a selectable enum value for front-ends.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// ToneOptions lists the tones in display order.
var ToneOptions = []Option{
	{Value: string(ToneFormal), Label: "👔 Formal", Description: "Profissional e corporativo"},
	{Value: string(ToneCreative), Label: "🎨 Criativo", Description: "Inovador e original"},
	{Value: string(ToneInspiring), Label: "✨ Inspirador", Description: "Motivacional e envolvente"},
	{Value: string(ToneTechnical), Label: "💻 Técnico", Description: "Objetivo e especializado"},
}

// FocusOptions lists the focuses in display order.
var FocusOptions = []Option{
	{Value: string(FocusLeadership), Label: "Liderança"},
	{Value: string(FocusInnovation), Label: "Inovação"},
	{Value: string(FocusResults), Label: "Resultados"},
	{Value: string(FocusCollaboration), Label: "Colaboração"},
}

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool { return hasOption(ToneOptions, string(t)) }

// Valid reports whether f is one of the supported focuses.
func (f Focus) Valid() bool { return hasOption(FocusOptions, string(f)) }

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// FormState holds the values entered by the user.
type FormState struct {
	Profession string `json:"profession"`
	Experience string `json:"experience"`
	Tone       Tone   `json:"tone"`
	Focus      Focus  `json:"focus"`
	Skills     string `json:"skills"`
}

// DefaultForm returns the form as it looks on first render.
func DefaultForm() FormState {
	return FormState{
		Tone:  DefaultTone,
		Focus: DefaultFocus,
	}
}

// ExperienceLength returns the experience length in characters.
func (f FormState) ExperienceLength() int {
	return utf8.RuneCountInString(f.Experience)
}

// Get returns the current value of a field.
func (f FormState) Get(field Field) string {
	switch field {
	case FieldProfession:
		return f.Profession
	case FieldExperience:
		return f.Experience
	case FieldTone:
		return string(f.Tone)
	case FieldFocus:
		return string(f.Focus)
	case FieldSkills:
		return f.Skills
	}
	return ""
}

// Set applies value to field and reports whether the form changed.
// Experience values longer than MaxExperienceLength are dropped without
// error so the previous value stays in place.
func (f *FormState) Set(field Field, value string) (bool, error) {
	switch field {
	case FieldProfession:
		f.Profession = value
	case FieldExperience:
		if utf8.RuneCountInString(value) > MaxExperienceLength {
			return false, nil
		}
		f.Experience = value
	case FieldTone:
		t := Tone(value)
		if !t.Valid() {
			return false, fmt.Errorf("%w: tone %q", ErrInvalidOption, value)
		}
		f.Tone = t
	case FieldFocus:
		fc := Focus(value)
		if !fc.Valid() {
			return false, fmt.Errorf("%w: focus %q", ErrInvalidOption, value)
		}
		f.Focus = fc
	case FieldSkills:
		f.Skills = value
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return true, nil
}
