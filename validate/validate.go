// Package validate checks request models against their validate tags
// before anything is sent to the API.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/adamwoolhether/nylas/api"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("validate: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	if err := validate.RegisterValidation("provider", func(fl validator.FieldLevel) bool {
		return slices.Contains(api.Providers, fl.Field().String())
	}); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("trigger", func(fl validator.FieldLevel) bool {
		return slices.Contains(api.TriggerTypes, fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// Check validates v against its declared tags.
func Check(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			fields = append(fields, FieldError{
				Field: verror.Field(),
				Err:   customErrForTag(verror.Tag(), verror),
			})
		}
		return fields
	}

	return nil
}

// Required reports an error when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return FieldErrors{{Field: field, Err: "This field is required"}}
	}
	return nil
}

// OneOf reports an error when value is not in allowed.
func OneOf(field, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return FieldErrors{{Field: field, Err: fmt.Sprintf("must be one of [%s]", strings.Join(allowed, " "))}}
	}
	return nil
}

// FieldError is a validation failure of one field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors collects every failed field of one check.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	d, err := json.Marshal(fe)
	if err != nil {
		return err.Error()
	}
	return string(d)
}

// Fields returns the failures keyed by field name.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, fld := range fe {
		m[fld.Field] = fld.Err
	}
	return m
}

// GetFieldErrors extracts FieldErrors from err's chain.
func GetFieldErrors(err error) FieldErrors {
	var fe FieldErrors
	if !errors.As(err, &fe) {
		return nil
	}
	return fe
}

func customErrForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "This field is required"
	case "provider":
		return fmt.Sprintf("must be one of [%s]", strings.Join(api.Providers, " "))
	case "trigger":
		return "must be a known webhook trigger type"
	default:
		return verror.Translate(translator)
	}
}

// All merges the FieldErrors of errs into one. Any other error is
// returned as is, ahead of field failures.
func All(errs ...error) error {
	var fields FieldErrors
	for _, err := range errs {
		if err == nil {
			continue
		}
		fe := GetFieldErrors(err)
		if fe == nil {
			return err
		}
		fields = append(fields, fe...)
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
