package utils // package utils provides helpers shared by handlers and the booking flow

import (
    "errors"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10" // struct tag validation

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
    v := validator.New(validator.WithRequiredStructEnabled())
    // Report fields by their json name so messages match request bodies.
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "" || name == "-" {
            return f.Name
        }
        return name
    })
    return v
}

// Validate checks s against its `validate` tags and returns the first
// failure as an *apperror.ValidationError, or nil.
func Validate(s any) error {
    err := validate.Struct(s)
    if err == nil {
        return nil
    }
    var ves validator.ValidationErrors
    if !errors.As(err, &ves) || len(ves) == 0 {
        return &apperror.ValidationError{Message: err.Error()}
    }
    fe := ves[0]
    return &apperror.ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "is required"
    case "email":
        return "must be a valid email address"
    case "gte":
        return "must be at least " + fe.Param()
    case "gt":
        return "must be greater than " + fe.Param()
    case "datetime":
        return "must be a date in YYYY-MM-DD form"
    case "numeric":
        return "must be a number"
    }
    return "failed " + fe.Tag() + " check"
}
