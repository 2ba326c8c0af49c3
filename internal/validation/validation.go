// Package validation checks request payloads and normalizes free text.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"brewlog/internal/models"

	"github.com/go-playground/validator/v10"
)

// ShopTags is the fixed vocabulary for describing a shop.
var ShopTags = []string{
	"cozy", "wifi", "outdoor_seating", "quiet", "pet_friendly", "laptop_friendly",
	"good_for_groups", "specialty", "roastery", "vegan_options", "late_night", "drive_through",
}

// CoffeeNotes is the fixed vocabulary for tasting notes.
var CoffeeNotes = []string{
	"fruity", "chocolatey", "nutty", "floral", "caramel", "citrus", "berry", "earthy",
	"spicy", "sweet", "bitter", "smooth", "bold", "creamy", "acidic",
}

var (
	shopTagSet    = toSet(ShopTags)
	coffeeNoteSet = toSet(CoffeeNotes)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("shoptag", func(fl validator.FieldLevel) bool {
		return IsShopTag(fl.Field().String())
	})
	_ = v.RegisterValidation("coffeenote", func(fl validator.FieldLevel) bool {
		return IsCoffeeNote(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("privacy", func(fl validator.FieldLevel) bool {
		return models.PrivacyLevel(fl.Field().String()).Valid()
	})
	return v
}

// Struct validates s by its `validate` tags and returns a validation
// AppError describing the first failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		if isText {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "shoptag":
		return fmt.Sprintf("%q is not a known shop tag", fe.Value())
	case "coffeenote":
		return fmt.Sprintf("%q is not a known coffee note", fe.Value())
	case "username":
		return usernameRule
	case "httpurl":
		return fmt.Sprintf("%s must be an http or https URL", field)
	case "privacy":
		return "privacy_level must be one of: public, friends_only, private"
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// IsShopTag reports whether tag is in the shop tag vocabulary.
func IsShopTag(tag string) bool {
	_, ok := shopTagSet[tag]
	return ok
}

// IsCoffeeNote reports whether note is in the coffee note vocabulary.
func IsCoffeeNote(note string) bool {
	_, ok := coffeeNoteSet[note]
	return ok
}

// IsHTTPURL reports whether raw is an absolute http(s) URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

const usernameRule = "username must be 3-30 characters of lowercase letters, numbers, and underscores"

// ValidateUsername checks if a username meets requirements. It backs the
// "username" struct tag.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError(usernameRule)
	}
	return nil
}

func validationf(format string, args ...any) error {
	return models.NewValidationError(fmt.Sprintf(format, args...))
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
