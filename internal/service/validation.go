package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"BubblyService/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// В сообщениях об ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return v
}

// validateRequest проверяет запрос по тегам validate.
// Отсутствующее обязательное поле возвращает requiredMsg, остальные нарушения называют поле.
func validateRequest(req interface{}, requiredMsg string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Internal("Validation failed", err)
	}

	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			return apperrors.Validation(requiredMsg)
		}
	}

	return apperrors.Validation(fmt.Sprintf("Invalid %s", validationErrors[0].Field()))
}
