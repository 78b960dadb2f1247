package import_branches

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newRecordValidator создает валидатор записей фида
// Ошибки содержат json-имена полей (departmentName, а не DepartmentName)
func newRecordValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("notblank", isNotBlank); err != nil {
		panic("import_branches: register notblank validation: " + err.Error())
	}

	return v
}

// isNotBlank строка не пустая и состоит не только из пробелов
func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateRecord проверяет структуру записи
func validateRecord(v *validator.Validate, rec *departmentRecord) error {
	err := v.Struct(rec)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(fields, "; "))
}
