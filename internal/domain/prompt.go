package domain

import (
	"fmt"
	"strings"
)

const (
	promptHeader = "Crie uma bio profissional para LinkedIn.\n    \n"
	promptFooter = "A bio deve ser concisa, impactante e destacar as principais qualidades do profissional."
)

// BuildPrompt renders the instruction sent to the generation backend.
// The skills line is always present and left blank when no skills were
// given, so the backend sees the same layout either way.
func BuildPrompt(f FormState) string {
	skills := ""
	if f.Skills != "" {
		skills = "Habilidades principais: " + f.Skills
	}

	var sb strings.Builder
	sb.WriteString(promptHeader)
	sb.WriteString(fmt.Sprintf("Profissão: %s\n", f.Profession))
	sb.WriteString(fmt.Sprintf("Experiência: %s\n", f.Experience))
	sb.WriteString(fmt.Sprintf("Tom desejado: %s\n", f.Tone))
	sb.WriteString(fmt.Sprintf("Foco principal: %s\n", f.Focus))
	sb.WriteString(skills + "\n")
	sb.WriteString("\n" + promptFooter)
	return sb.String()
}
