package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"garageadmin/internal/api"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type validationResponse struct {
	api.ErrorResponse
	Details []ValidationError `json:"details"`
}

var validate = newValidator()

// newValidator reports fields by their json name so messages match the request body.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func ValidateStruct(s interface{}) []ValidationError {
	var out []ValidationError

	var verrs validator.ValidationErrors
	if err := validate.Struct(s); errors.As(err, &verrs) {
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: getErrorMessage(fe),
			})
		}
	}

	return out
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "uuid", "uuid4":
		return err.Field() + " must be a valid id"
	case "oneof":
		return err.Field() + " must be one of: " + strings.ReplaceAll(err.Param(), " ", ", ")
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}

func RespondWithValidationErrors(c *gin.Context, errs []ValidationError) {
	msg := "validation failed"
	if len(errs) > 0 {
		msg = errs[0].Message
	}
	c.JSON(http.StatusBadRequest, validationResponse{
		ErrorResponse: api.ErrorResponse{Error: "validation failed", Message: msg},
		Details:       errs,
	})
}
