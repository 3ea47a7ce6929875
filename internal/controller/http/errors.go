package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/julienreichel/oc-provider-backend/internal/dto/response"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

const msgInternalError = "Internal server error"

// Validation errors name fields by their JSON key.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondError writes the error body for err. Errors outside the application
// taxonomy are reported as 500 without their details.
func respondError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError,
			response.NewError(http.StatusInternalServerError, apperrors.CodeInternalError, msgInternalError))
		return
	}
	ctx.AbortWithStatusJSON(appErr.Status, response.NewError(appErr.Status, appErr.Code, appErr.Message))
}

// respondBindError reports a request that could not be bound as 400
func respondBindError(ctx *gin.Context, err error) {
	_ = ctx.Error(err).SetType(gin.ErrorTypeBind)
	ctx.AbortWithStatusJSON(http.StatusBadRequest,
		response.NewError(http.StatusBadRequest, apperrors.CodeBadRequest, bindingMessage(err)))
}

func bindingMessage(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		validErrs validator.ValidationErrors
	)
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is required"
	case errors.As(err, &syntaxErr):
		return "Malformed JSON request body"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Field %s must be of type %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &validErrs):
		msgs := make([]string, 0, len(validErrs))
		for _, fe := range validErrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	default:
		return "Invalid request"
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
