package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/biogen/internal/domain"
	"github.com/ashureev/biogen/internal/session"
)

// Runner walks the user through the form and submits it.
type Runner struct {
	driver PromptDriver
	ctrl   *session.Controller
}

// NewRunner creates a runner for ctrl.
func NewRunner(driver PromptDriver, ctrl *session.Controller) *Runner {
	return &Runner{driver: driver, ctrl: ctrl}
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s é obrigatório", label)
		}
		return nil
	}
}

func experienceValidator(s string) error {
	if err := required("Experiência")(s); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(s); n > domain.MaxExperienceLength {
		return fmt.Errorf("experiência tem %d caracteres, o máximo é %d", n, domain.MaxExperienceLength)
	}
	return nil
}

func optionLabels(opts []domain.Option) []string {
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.Label
		if o.Description != "" {
			labels[i] += " - " + o.Description
		}
	}
	return labels
}

func optionIndex(opts []domain.Option, value string) int {
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return 0
}

// Fill asks for every field and stores the answers in the session.
func (r *Runner) Fill(ctx context.Context) error {
	form := r.ctrl.Form()

	profession, err := r.driver.Input(ctx, InputConfig{
		Message:   "Profissão",
		Default:   form.Profession,
		Help:      "Ex: Desenvolvedor Full Stack",
		Validator: required("Profissão"),
	})
	if err != nil {
		return err
	}
	if err := r.ctrl.SetField(domain.FieldProfession, profession); err != nil {
		return err
	}

	tone, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Tom da Bio",
		Options:      optionLabels(domain.ToneOptions),
		DefaultIndex: optionIndex(domain.ToneOptions, string(form.Tone)),
	})
	if err != nil {
		return err
	}
	if err := r.setOption(domain.FieldTone, domain.ToneOptions, tone); err != nil {
		return err
	}

	experience, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message:   fmt.Sprintf("Experiência (máx. %d caracteres)", domain.MaxExperienceLength),
		Default:   form.Experience,
		Help:      "Descreva sua experiência, projetos principais, conquistas...",
		Validator: experienceValidator,
	})
	if err != nil {
		return err
	}
	if err := r.ctrl.SetField(domain.FieldExperience, experience); err != nil {
		return err
	}
	if r.ctrl.Form().Experience != experience {
		if err := r.driver.Info(ctx, fmt.Sprintf("Experiência acima de %d caracteres foi ignorada.", domain.MaxExperienceLength)); err != nil {
			return err
		}
	}

	focus, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Foco Principal",
		Options:      optionLabels(domain.FocusOptions),
		DefaultIndex: optionIndex(domain.FocusOptions, string(form.Focus)),
	})
	if err != nil {
		return err
	}
	if err := r.setOption(domain.FieldFocus, domain.FocusOptions, focus); err != nil {
		return err
	}

	skills, err := r.driver.Input(ctx, InputConfig{
		Message: "Habilidades Principais (opcional)",
		Default: form.Skills,
		Help:    "Ex: React, Node.js, Liderança de Equipes",
	})
	if err != nil {
		return err
	}
	return r.ctrl.SetField(domain.FieldSkills, skills)
}

func (r *Runner) setOption(field domain.Field, opts []domain.Option, idx int) error {
	if idx < 0 || idx >= len(opts) {
		return fmt.Errorf("%w: %s index %d", domain.ErrInvalidOption, field, idx)
	}
	return r.ctrl.SetField(field, opts[idx].Value)
}

// Run fills the form, submits it and prints the outcome. A generated bio is
// copied to the clipboard when copyResult is set, otherwise the user is
// asked. Generation failures are reported to the user and returned.
func (r *Runner) Run(ctx context.Context, copyResult bool) (session.Snapshot, error) {
	if err := r.Fill(ctx); err != nil {
		return r.ctrl.Snapshot(), err
	}

	if err := r.driver.Info(ctx, "⏳ Gerando..."); err != nil {
		return r.ctrl.Snapshot(), err
	}
	submitErr := r.ctrl.Submit(ctx)
	snap := r.ctrl.Snapshot()
	if submitErr != nil {
		if err := r.driver.Info(ctx, "⚠️ "+snap.Error); err != nil {
			return snap, err
		}
		return snap, submitErr
	}

	if err := r.driver.Info(ctx, "✅ Sua Nova Bio\n\n"+snap.Bio); err != nil {
		return snap, err
	}

	if !copyResult {
		ok, err := r.driver.Confirm(ctx, "📋 Copiar para a área de transferência?", false)
		if err != nil || !ok {
			return snap, err
		}
	}
	copyErr := r.ctrl.CopyResult()
	snap = r.ctrl.Snapshot()
	switch {
	case copyErr == nil:
		return snap, r.driver.Info(ctx, "✓ Copiado!")
	case errors.Is(copyErr, session.ErrClipboard):
		return snap, r.driver.Info(ctx, "⚠️ "+snap.Error)
	default:
		return snap, copyErr
	}
}
