package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"techtalks/internal/domain"
)

// Validator is implemented by request DTOs that need checks beyond struct tags.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// Messages shown to users for the password policy.
const (
	MsgPasswordMismatch = "Password tidak sama"
	MsgPasswordTooShort = "Password minimal 8 karakter"
	MsgPasswordWeak     = "Password harus mengandung huruf besar, huruf kecil, angka, dan simbol"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("password_strength", validatePasswordStrength)
	_ = v.RegisterValidation("time_slot", validateTimeSlot)
	_ = v.RegisterValidation("event_date", validateEventDate)
	return v
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validatePasswordStrength requires an upper-case letter, a lower-case letter, a digit and a symbol.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, c := range fl.Field().String() {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSymbol
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return domain.IsTimeSlot(fl.Field().String())
}

func validateEventDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.DateLayout, fl.Field().String())
	return err == nil
}

// ValidateStruct runs tag validation and, if v implements Validator, its Validate method.
// It returns user-facing messages; nil means valid.
func ValidateStruct(v any) []string {
	var msgs []string
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			msgs = append(msgs, formatFieldError(fe))
		}
	}
	if val, ok := v.(Validator); ok {
		msgs = append(msgs, val.Validate()...)
	}
	return msgs
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s wajib diisi", field)
	case "email":
		return fmt.Sprintf("%s harus berupa alamat email yang valid", field)
	case "min":
		if fe.Kind() == reflect.String && strings.Contains(field, "password") {
			return MsgPasswordTooShort
		}
		return fmt.Sprintf("%s minimal %s karakter", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s maksimal %s karakter", field, fe.Param())
	case "eqfield":
		return MsgPasswordMismatch
	case "oneof":
		return fmt.Sprintf("%s harus salah satu dari: %s", field, fe.Param())
	case "password_strength":
		return MsgPasswordWeak
	case "time_slot":
		return fmt.Sprintf("%s harus salah satu dari: %s", field, strings.Join(domain.TimeSlots, ", "))
	case "event_date":
		return fmt.Sprintf("%s harus berformat YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s tidak valid", field)
	}
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and validates it with ValidateStruct. On decode or validation failure
// it writes a 400 JSON error and returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if errs := ValidateStruct(dest); len(errs) > 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
		return false
	}
	return true
}
