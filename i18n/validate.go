package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

// ValidationError lists the invalid fields of a request body, keyed by JSON
// field name, with messages in the request's locale.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator validates structs and translates the failures.
type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
	fallback string
}

// NewValidator registers English and French messages. Unknown locales get
// fallbackLocale.
func NewValidator(fallbackLocale string) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, fr.New())

	enTrans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return nil, fmt.Errorf("register en translations: %w", err)
	}
	frTrans, _ := uni.GetTranslator("fr")
	if err := fr_translations.RegisterDefaultTranslations(v, frTrans); err != nil {
		return nil, fmt.Errorf("register fr translations: %w", err)
	}

	return &Validator{validate: v, uni: uni, fallback: fallbackLocale}, nil
}

// Struct validates s. Field failures come back as *ValidationError.
func (v *Validator) Struct(locale string, s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	trans, found := v.uni.GetTranslator(locale)
	if !found {
		trans, _ = v.uni.GetTranslator(v.fallback)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Translate(trans)
	}
	return out
}
