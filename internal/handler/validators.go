package handler

import (
	"strings"
	"sync"

	"pettycash/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules used by request payloads.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return model.IsValidCategory(strings.TrimSpace(fl.Field().String()))
		})
	})
}
