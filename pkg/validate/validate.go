// Package validate wraps go-playground/validator with english messages and
// JSON field names, and converts failures into a ValidationError.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
	moneyTag    = "money"
)

// Money columns are NUMERIC(12,2).
const (
	MoneyScale  = 2
	moneyDigits = 10
)

var moneyLimit = decimal.New(1, moneyDigits)

// ErrInvalidInput is the error wrapped by every ValidationError built from struct tags.
var ErrInvalidInput = errors.New("invalid input")

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Money is carried as decimal.Decimal; validate it as a number so gt/gte/required work.
	Validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = Validate.RegisterTranslation(notBlankTag, Translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, _ validator.FieldError) string { return "this field cannot be blank" },
	)

	_ = Validate.RegisterValidation(moneyTag, moneyValidation)
	_ = Validate.RegisterTranslation(moneyTag, Translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " must have at most 2 decimal places and be less than " + moneyLimit.String()
		},
	)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}

// Field builds a ValidationError for a single field.
func Field(field, msg string) error {
	return NewValidationError(ErrInvalidInput, FieldError{Field: field, Error: msg})
}

// Struct validates v against its `validate` tags. It returns nil or a *ValidationError.
func Struct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	flds := make([]FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		flds = append(flds, FieldError{Field: fe.Field(), Error: fe.Translate(Translator)})
	}
	return NewValidationError(ErrInvalidInput, flds...)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// IsMoney reports whether d fits a NUMERIC(12,2) column without rounding.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale)) && d.Abs().LessThan(moneyLimit)
}

// moneyValidation checks the field's original decimal.Decimal. The custom
// type func has already turned it into a float64 by the time fl.Field() is
// read, so the raw value is taken from the parent struct.
func moneyValidation(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() == reflect.Struct {
		if f := parent.FieldByName(fl.StructFieldName()); f.IsValid() {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				return IsMoney(d)
			}
		}
	}
	if f, ok := fl.Field().Interface().(float64); ok {
		return IsMoney(decimal.NewFromFloat(f))
	}
	return false
}

func decimalValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}
