package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/walkin-api/internal/form"
	"github.com/jwalitptl/walkin-api/internal/handler"
	"github.com/jwalitptl/walkin-api/pkg/validator"
)

// RegisterValidators installs the project tags and json field naming on
// gin's binding engine. It is called once while building the router.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	for tag, fn := range validator.CustomValidators() {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	v.RegisterTagNameFunc(validator.JSONTagName)
	return nil
}

// Validation turns binding failures recorded with c.Error into a 400 that
// lists each offending field.
func Validation() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var fields []form.FieldError
		for _, e := range c.Errors {
			var errs playground.ValidationErrors
			if !errors.As(e.Err, &errs) {
				continue
			}
			for _, fe := range errs {
				fields = append(fields, form.FieldError{
					Field:   fe.Field(),
					Message: validator.FieldMessage(fe),
				})
			}
		}
		if len(fields) > 0 {
			resp := handler.NewValidationResponse("invalid request", fields)
			resp.TraceID = c.GetString(ContextRequestID)
			c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		}
	}
}
