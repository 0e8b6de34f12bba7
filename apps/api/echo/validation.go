package echoapi

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/user"
)

// NewValidation returns the validator used by the API handlers and the translator of its messages.
func NewValidation() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	hours.InitValidators(validate, translator)
	return validate, translator
}
