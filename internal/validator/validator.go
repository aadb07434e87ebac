// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ryakubu/auto-categorize-app/internal/history"
	"github.com/ryakubu/auto-categorize-app/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("expense_category", validateExpenseCategory)
	_ = v.RegisterValidation("category_filter", validateCategoryFilter)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("not_blank", validateNotBlank)
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	_, err := models.ParseCategory(fl.Field().String())
	return err == nil
}

func validateCategoryFilter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.EqualFold(s, history.AllCategories) {
		return true
	}
	return validateExpenseCategory(fl)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
