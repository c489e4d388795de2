package customvalidator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// PriceMaxDigits and PriceMaxDecimals mirror the NUMERIC(12,2) price column.
	PriceMaxDigits   = 12
	PriceMaxDecimals = 2

	dateLayout = "2006-01-02"
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// New builds a validator with the null-type adapters and every custom rule
// registered.
func New() (*validator.Validate, error) {
	v := validator.New()
	registerNullTypes(v)
	if err := RegisterCustomValidations(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RegisterCustomValidations registers the tags used by the DTOs.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"username":     isUsername,
		"custom_email": isGoodEmailFormat,
		"decimal_gte0": isPrice,
		"date_only":    isDateOnly,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || emailRegex.MatchString(s)
}

// isPrice accepts a non-negative amount that fits NUMERIC(12,2).
func isPrice(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil || d.IsNegative() {
		return false
	}
	if d.Exponent() < -PriceMaxDecimals && !d.Equal(d.Round(PriceMaxDecimals)) {
		return false
	}
	intPart := d.Truncate(0).Abs().String()
	return len(intPart) <= PriceMaxDigits-PriceMaxDecimals
}

func isDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}
