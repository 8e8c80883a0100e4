// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// monthKeyRegex matches the "YYYY-MM" month filter keys the dashboard sends.
var monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("report_status", validateReportStatus)
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("month_key", validateMonthKey)
	}
}

func validateReportStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "financed", "rejected":
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "user":
		return true
	}
	return false
}

func validateMonthKey(fl validator.FieldLevel) bool {
	return monthKeyRegex.MatchString(fl.Field().String())
}
