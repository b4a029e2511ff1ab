package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
)

// Custom binding validations for domain enums. Registered once on gin's
// shared validator engine so request structs can tag enum fields directly.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("documentkind", func(fl validator.FieldLevel) bool {
		return billing.DocumentKind(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("submissiontype", func(fl validator.FieldLevel) bool {
		return billing.SubmissionType(fl.Field().String()).IsValid()
	})
}
