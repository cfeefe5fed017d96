package validator

import (
	"sudsy/pkg/logger"
	"sudsy/pkg/model"

	"github.com/go-playground/validator/v10"
)

type DirectoryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewDirectoryValidator(log *logger.Logger) *DirectoryValidator {
	return &DirectoryValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *DirectoryValidator) ValidateProvider(provider *model.Provider) error {
	return v.validate.Struct(provider)
}

func (v *DirectoryValidator) ValidateProperty(property *model.Property) error {
	if err := v.validate.Struct(property); err != nil {
		return err
	}
	return v.validate.Struct(&property.Address)
}
