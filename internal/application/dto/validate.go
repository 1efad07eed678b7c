package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Negocio-api/internal/domain"
)

// MaxScale decimales que admite NUMERIC(18,4).
const MaxScale = 4

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func decimalOf(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	return d, ok
}

// initValidator registra las reglas de montos decimales. decimal.Decimal no se registra como
// CustomType: las reglas leen el campo directamente.
func initValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"dgt0": func(fl validator.FieldLevel) bool {
			d, ok := decimalOf(fl)
			return ok && d.IsPositive()
		},
		"dgte0": func(fl validator.FieldLevel) bool {
			d, ok := decimalOf(fl)
			return ok && !d.IsNegative()
		},
		"dscale": func(fl validator.FieldLevel) bool {
			d, ok := decimalOf(fl)
			if !ok {
				return false
			}
			places, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return d.Equal(d.Round(int32(places)))
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("registrar %q: %w", tag, err)
		}
	}
	return v, nil
}

// Validate aplica las etiquetas `validate` de un request. El primer error se devuelve
// envuelto en domain.ErrInvalidInput con la ruta JSON del campo.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return errValidate
	}

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return formatFieldError(fieldErrs[0])
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

var fieldMessages = map[string]func(param string) string{
	"required":         func(string) string { return "es obligatorio" },
	"min":              func(p string) string { return "debe tener al menos " + p },
	"max":              func(p string) string { return "debe tener como máximo " + p },
	"email":            func(string) string { return "no es un email válido" },
	"required_without": func(p string) string { return "es obligatorio sin " + p },
	"oneof":            func(p string) string { return "debe ser uno de [" + p + "]" },
	"unique":           func(p string) string { return "no admite " + p + " repetido" },
	"dgt0":             func(string) string { return "debe ser mayor que cero" },
	"dgte0":            func(string) string { return "no puede ser negativo" },
	"dscale":           func(p string) string { return "admite como máximo " + p + " decimales" },
}

func formatFieldError(fe validator.FieldError) error {
	field := fe.Namespace()
	// sin el nombre del struct raíz
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	msg := "no cumple " + fe.Tag()
	if format, ok := fieldMessages[fe.Tag()]; ok {
		msg = format(fe.Param())
	}
	return fmt.Errorf("%w: %s %s", domain.ErrInvalidInput, field, msg)
}
