package models

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate — общий валидатор DTO запросов.
// Помимо встроенных правил регистрирует:
//   - username: буквы/цифры, допускаются '_' и '-';
//   - password: хотя бы одна цифра и одна заглавная буква;
//   - notblank: строка не состоит из одних пробелов.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях используем имена полей с провода.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := strings.NewReplacer("_", "", "-", "").Replace(fl.Field().String())
		if s == "" {
			return false
		}
		for _, r := range s {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var digit, upper bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsUpper(r):
				upper = true
			}
		}
		return digit && upper
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Describe превращает ошибку валидации в короткое сообщение вида
// "email is invalid; password is required".
func Describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min", "max", "gt":
			msgs = append(msgs, field+" must be "+fe.Tag()+" "+fe.Param())
		case "password":
			msgs = append(msgs, field+" must contain a digit and an uppercase letter")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}

	return strings.Join(msgs, "; ")
}
