package validation

import (
	"errors"
	"fmt"
	"strings"

	"marginalia/pkg/models"
)

// Rules configures annotation validation; zero value means permissive
// defaults.
type Rules struct {
	MaxContentLen  int
	RequireContent bool
}

var rules Rules

// SetRules installs the global validation rules, usually from config at
// startup.
func SetRules(r Rules) { rules = r }

// ValidateAnnotation checks structural invariants plus any configured
// rules. Empty content is valid unless RequireContent is set: the UI treats
// an empty body as a placeholder, not an error.
func ValidateAnnotation(a models.Annotation) error {
	var errs []string
	if strings.TrimSpace(a.FileID) == "" {
		errs = append(errs, "fileId is required")
	}
	if a.StartLine < 1 {
		errs = append(errs, "startLine must be >= 1")
	}
	if a.EndLine < a.StartLine {
		errs = append(errs, "endLine must be >= startLine")
	}
	if rules.RequireContent && strings.TrimSpace(a.Content) == "" {
		errs = append(errs, "content is required")
	}
	if rules.MaxContentLen > 0 && len(a.Content) > rules.MaxContentLen {
		errs = append(errs, fmt.Sprintf("content exceeds max length %d", rules.MaxContentLen))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
