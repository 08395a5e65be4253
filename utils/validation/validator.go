package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// EmailRegex is a simple email validation regex
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// ErrInvalidAmount is returned for amounts that are negative or carry
	// more than two fractional digits.
	ErrInvalidAmount = errors.New("amount must be a non-negative decimal with at most 2 fractional digits")
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				errs[field] = fmt.Sprintf("%s is required", e.Field())
			case "email":
				errs[field] = "Invalid email format"
			case "min":
				errs[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
			case "max":
				errs[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
			case "gte":
				errs[field] = fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
			default:
				errs[field] = fmt.Sprintf("%s is invalid", e.Field())
			}
		}
	}

	return errs
}

// ValidateEmail checks if an email is valid
func ValidateEmail(email string) bool {
	if len(email) < 3 || len(email) > 254 {
		return false
	}
	return EmailRegex.MatchString(email)
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

// NormalizeAmount validates a monetary amount and normalizes it to exactly
// two fractional digits. Amounts arrive as JSON numbers; the check works in
// paise to avoid float representation noise.
func NormalizeAmount(amount float64) (float64, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	paise := amount * 100
	rounded := math.Round(paise)
	if math.Abs(paise-rounded) > 1e-6 {
		return 0, ErrInvalidAmount
	}
	return rounded / 100, nil
}

// NormalizeCurrency uppercases an ISO currency code, defaulting to INR.
func NormalizeCurrency(currency string) string {
	currency = strings.ToUpper(SanitizeString(currency))
	if currency == "" {
		return "INR"
	}
	return currency
}
