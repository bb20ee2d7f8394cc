package httpx

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// decimal(10,2), as stored for nightly prices
var priceRe = regexp.MustCompile(`^[0-9]{1,8}(\.[0-9]{1,2})?$`)

// NewValidator returns a validator that reports fields by their JSON names.
// It adds the "price" tag: a positive decimal with at most two fraction digits.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(JSONTagName)
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return ValidPrice(fl.Field().String())
	})
	return v
}

func ValidPrice(s string) bool {
	return priceRe.MatchString(s) && strings.Trim(s, "0.") != ""
}

func JSONTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}
