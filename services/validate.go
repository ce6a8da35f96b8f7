package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request payload
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and turns the first failure into a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ValidationError(err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return ValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return ValidationError(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "min":
		return ValidationError(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "gte":
		return ValidationError(fmt.Sprintf("%s must be %s or more", fe.Field(), fe.Param()))
	default:
		return ValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// ParseID converts a hex id from a path or body into an ObjectID.
func ParseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, ValidationError("invalid " + what + " id")
	}
	return id, nil
}
