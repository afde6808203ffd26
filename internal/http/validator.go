package http

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("album_year", validateAlbumYear)
}

// validateAlbumYear accepts an empty year or a plausible 4-digit one. The
// field stays a display string; rows imported from the store carry years
// like "1991" but nothing enforces it upstream.
func validateAlbumYear(fl validator.FieldLevel) bool {
	year := strings.TrimSpace(fl.Field().String())
	if year == "" {
		return true
	}
	matched, _ := regexp.MatchString(`^(18|19|20)\d{2}$`, year)
	return matched
}

func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []ErrorDetail
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "album_year":
			message = fmt.Sprintf("%s must be a 4-digit year", field)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "gte", "lte":
			message = fmt.Sprintf("%s must be between %s", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		details = append(details, ErrorDetail{
			Field:   fieldName,
			Message: message,
		})
	}

	return details
}
