package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/transform"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	_ = v.RegisterValidation("sourceid", validateSourceID)
	_ = v.RegisterValidation("tag", validateTag)
	return v
}

// validateSourceID rejects ids that a selector could not name: reserved
// tags, and strings a tokenizer would split or trim.
func validateSourceID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return isToken(id) && id != collection.TagRaw && id != collection.TagAll
}

func validateTag(fl validator.FieldLevel) bool {
	return isToken(fl.Field().String())
}

func isToken(s string) bool {
	return s != "" && s == strings.TrimSpace(s) && !strings.Contains(s, ",")
}

// Validate checks a manifest and returns every problem found, aggregated
// into a *multierror.Error. Transform names are checked against reg.
func Validate(m *Manifest, reg *transform.Registry) error {
	var result *multierror.Error

	if err := validate.Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, fieldError(fe))
		}
	}

	seen := make(map[string]int, len(m.Sources))
	for i, d := range m.Sources {
		at := fmt.Sprintf("sources[%d]", i)
		if d.ID != "" {
			at = fmt.Sprintf("sources[%d] (%s)", i, d.ID)
			if first, dup := seen[d.ID]; dup {
				result = multierror.Append(result, fmt.Errorf("%s: duplicate id, first declared at sources[%d]", at, first))
			} else {
				seen[d.ID] = i
			}
		}

		if !d.IsDerived() {
			if len(d.Sources) > 0 {
				result = multierror.Append(result, fmt.Errorf("%s: sources given without derive", at))
			}
			if _, err := ir.FromAny(d.Data); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: data: %w", at, err))
			}
			continue
		}

		if d.Data != nil {
			result = multierror.Append(result, fmt.Errorf("%s: data and derive are mutually exclusive", at))
		}
		if reg != nil {
			if _, err := reg.Lookup(d.Derive); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", at, err))
			}
		}
	}

	return result.ErrorOrNil()
}

// fieldError rewrites a validator failure in manifest terms,
// e.g. "sources[2].id: failed sourceid".
func fieldError(fe validator.FieldError) error {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	return fmt.Errorf("%s: failed %s", path, fe.Tag())
}
