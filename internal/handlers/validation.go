package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pomegranateis/webfinalserver/internal/models"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the username rule to gin's validator and makes
// field errors carry the request's JSON key instead of the Go field name.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonTagName)
		if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return models.ValidUsername(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	})
}

func jsonTagName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
