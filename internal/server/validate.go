package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"pratocheio/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Error messages carry the wire field name, not the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	must("tipousuario", func(fl validator.FieldLevel) bool {
		return types.ValidUserType(fl.Field().String())
	})

	must("dataiso", func(fl validator.FieldLevel) bool {
		_, err := types.ParseValidade(fl.Field().String())
		return err == nil
	})

	return v
}

// validationMessages flattens a validator error into one message per
// violated field rule. Validation is not fail-fast, so a single 400
// carries every problem in the payload.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request body"}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "eq":
		return fmt.Sprintf("%s must equal %q", fe.Field(), fe.Param())
	case "tipousuario":
		return fmt.Sprintf("%s must be one of Pessoa Física, ONG or Pessoa Jurídica", fe.Field())
	case "dataiso":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

var idPattern = regexp.MustCompile(`^[0-9]{6}$`)

// paramID extracts and validates a 6-digit route parameter, answering
// the request itself when the shape is wrong.
func (s *Service) paramID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := flow.Param(r.Context(), name)
	if !idPattern.MatchString(id) {
		s.respondErrors(w, []string{fmt.Sprintf("%s must be a 6 digit numeric id", name)})
		return "", false
	}
	return id, true
}
