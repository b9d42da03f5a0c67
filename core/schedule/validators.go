package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/HillyAttic/opsboard/core"
)

var (
	patternTag  = "pattern"
	patternText = "must be one of monthly, quarterly, half-yearly or yearly"
)

// InitValidators registers schedule-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(patternTag, patternValidation)
	core.RegisterCustomTranslation(validate, translator, patternTag, patternText)
}

// patternValidation only allows known recurrence patterns.
func patternValidation(fl validator.FieldLevel) bool {
	return Pattern(fl.Field().String()).IsValid()
}
