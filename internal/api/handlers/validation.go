package handlers

import (
	"sync"

	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the transaction_type and category tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("transaction_type", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseTransactionType(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseCategory(fl.Field().String())
			return err == nil
		})
	})
}
