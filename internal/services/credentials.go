package services

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Credentials represents the object-store login details
type Credentials struct {
	Endpoint     string `json:"endpoint"`
	Region       string `json:"region"`
	AccessKey    string `json:"accessKey" validate:"required"`
	SecretKey    string `json:"secretKey" validate:"required"`
	SessionToken string `json:"sessionToken,omitempty"` // For STS
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports a *CredentialsError naming every missing key, or nil.
func (c Credentials) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &CredentialsError{Err: err}
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return &CredentialsError{Missing: missing}
}
