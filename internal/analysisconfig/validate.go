package analysisconfig

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes the first invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report yaml paths, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges and cross-field constraints
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return ValidationError{
				Field:   strings.TrimPrefix(e.Namespace(), "Config."),
				Message: describe(e),
			}
		}
		return err
	}

	if sum := cfg.Weights.Sum(); math.Abs(sum-1.0) > 1e-6 {
		return ValidationError{"weights", fmt.Sprintf("must sum to 1.0, got %.4f", sum)}
	}

	if cfg.Thresholds.Sell >= cfg.Thresholds.Buy {
		return ValidationError{"thresholds", "sell must be below buy"}
	}

	return nil
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "gte":
		return "must be >= " + e.Param()
	case "lte":
		return "must be <= " + e.Param()
	case "gt":
		return "must be > " + e.Param()
	case "lt":
		return "must be < " + e.Param()
	default:
		return "failed " + e.Tag()
	}
}
