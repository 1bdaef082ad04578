package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("lock_state", validateLockState)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("ride_state", validateRideState)
	if err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateLockState(fl validator.FieldLevel) bool {
	state := fl.Field().String()
	return state == "locked" || state == "unlocked"
}

func validateRideState(fl validator.FieldLevel) bool {
	state := fl.Field().String()
	validStates := []string{"idle", "riding", "maintenance"}

	for _, validState := range validStates {
		if state == validState {
			return true
		}
	}
	return false
}
