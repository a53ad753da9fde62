package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)^https?://.+`)
	aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,16}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return urlPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
		return aliasPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidationError ввод пользователя отклонён до отправки на сервер
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "httpurl":
		return fmt.Sprintf("%s must start with http:// or https://", e.Field)
	case "alias":
		return fmt.Sprintf("%s must be 3-16 characters: letters, digits, '_' or '-'", e.Field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Rule)
	}
}

// NewShortenRequest собирает запрос из пользовательского ввода.
// Пробелы по краям обрезаются, срок жизни приводится к UTC.
func NewShortenRequest(url, custom string, expiresAt *time.Time) (ShortenRequest, error) {
	req := ShortenRequest{
		URL:    strings.TrimSpace(url),
		Custom: strings.TrimSpace(custom),
	}
	if expiresAt != nil {
		t := expiresAt.UTC()
		req.ExpiresAt = &t
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return ShortenRequest{}, &ValidationError{
				Field: strings.ToLower(verrs[0].Field()),
				Rule:  verrs[0].Tag(),
			}
		}
		return ShortenRequest{}, err
	}
	return req, nil
}

// ValidateCode проверяет код для запроса аналитики и возвращает его без пробелов
func ValidateCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if err := validate.Var(code, "required"); err != nil {
		return "", &ValidationError{Field: "code", Rule: "required"}
	}
	return code, nil
}
