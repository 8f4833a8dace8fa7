package model

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// clockTimePattern matches the canonical HH:MM:SS.hh time representation.
var clockTimePattern = regexp.MustCompile(`^\d{2}:[0-5]\d:[0-5]\d\.\d{2}$`)

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("clocktime", isClockTime)
	_ = v.RegisterValidation("category", isCategory)

	// Report json names so errors match what clients sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isClockTime(fl validator.FieldLevel) bool {
	return clockTimePattern.MatchString(fl.Field().String())
}

func isCategory(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).Valid()
}

// Validate checks the record against the ingestion rules. The returned error
// is a *MalformedRecordError naming every failing field.
func (r PerformanceRecord) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Malformed(r, "record", err.Error())
	}
	fields := make([]string, 0, len(verrs))
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		reasons = append(reasons, describe(fe))
	}
	return Malformed(r, strings.Join(fields, ","), strings.Join(reasons, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "clocktime":
		return "must be HH:MM:SS.hh"
	case "category":
		return "is not a scoring category"
	default:
		return "failed " + fe.Tag()
	}
}
