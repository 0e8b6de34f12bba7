package hours

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/cambria/academy/core"
)

var (
	programTag  = "program"
	programText = "unknown program"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(programTag, programValidation)
	core.RegisterCustomTranslation(validate, translator, programTag, programText)
}

func programValidation(fl validator.FieldLevel) bool {
	return ProgramKey(fl.Field().String()).IsValid()
}
