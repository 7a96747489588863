// Package validation runs the structural checks on a desired collection
// that must pass before any network call is made for its resource type.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/normalize"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns nil or an AppError with CodeValidation wrapping a
// *apperrors.ValidationError that lists every problem found.
func (v *Validator) Validate(desired []domain.DesiredItem, cfg domain.ResourceConfig) error {
	verr := &apperrors.ValidationError{ResourceType: string(cfg.Type)}

	if cfg.Singleton && len(desired) > 1 {
		verr.Problems = append(verr.Problems,
			fmt.Sprintf("%s is a single settings object, got %d items", cfg.Type, len(desired)))
	}

	counts := make(map[domain.Key]int, len(desired))
	for i, item := range desired {
		label := itemLabel(item, i)

		if !cfg.Singleton {
			key, err := normalize.IdentityOf(item.Payload, cfg)
			if err != nil {
				var missing *normalize.MissingIdentityError
				if errors.As(err, &missing) {
					missing.Origin = item.Origin
				}
				verr.Problems = append(verr.Problems, err.Error())
			} else {
				counts[key]++
				if counts[key] == 2 {
					verr.DuplicateKeys = append(verr.DuplicateKeys, key.String())
				}
			}
		}

		for _, field := range cfg.DisallowedFields {
			if _, ok := normalize.GetPath(item.Payload, field); ok {
				verr.Problems = append(verr.Problems, fmt.Sprintf("%s: field %q is not allowed", label, field))
			}
		}

		if cfg.Schema != nil {
			verr.Problems = append(verr.Problems, v.checkSchema(item.Payload, cfg.Schema(), label)...)
		}
	}

	if !verr.HasProblems() {
		return nil
	}
	return apperrors.WrapUserFacing(verr, apperrors.CodeValidation,
		verr.Error(), fmt.Sprintf("Fix the %s entries in the desired state and run again.", cfg.Type))
}

func (v *Validator) checkSchema(p domain.Payload, target any, label string) []string {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return []string{fmt.Sprintf("%s: schema decoder: %v", label, err)}
	}
	if err := decoder.Decode(map[string]any(p)); err != nil {
		return []string{fmt.Sprintf("%s: %v", label, err)}
	}

	err = v.validate.Struct(target)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{fmt.Sprintf("%s: %v", label, err)}
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s: field '%s' failed on '%s' validation", label, fieldPath(fe), fe.Tag()))
	}
	return problems
}

// fieldPath drops the struct name prefix from a validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func itemLabel(item domain.DesiredItem, index int) string {
	if name, ok := item.Payload[domain.KeyName].(string); ok && name != "" {
		return fmt.Sprintf("item %q", name)
	}
	if item.Origin != "" {
		return fmt.Sprintf("item from %s", item.Origin)
	}
	return fmt.Sprintf("item #%d", index+1)
}
