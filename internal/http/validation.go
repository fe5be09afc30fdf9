package http

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/genasnewdar/lever-stg/internal/types"
)

// RegisterValidators installs the enum tags used in request binding.
// Registration overwrites, so calling it twice is harmless.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
		return types.UserType(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("attendancetype", func(fl validator.FieldLevel) bool {
		return types.AttendanceType(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("ieltsmodule", func(fl validator.FieldLevel) bool {
		return types.IeltsModule(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("enrollmentstatus", func(fl validator.FieldLevel) bool {
		return types.EnrollmentStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
}
