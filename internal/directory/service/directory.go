package service

import (
	"context"
	"errors"
	directoryerrors "sudsy/internal/directory/errors"
	"sudsy/internal/directory/repository"
	"sudsy/internal/directory/validator"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/model"
	"sudsy/pkg/sanitizer"
)

type DirectoryService interface {
	RegisterProvider(ctx context.Context, provider *model.Provider) error
	GetProvider(ctx context.Context, id string) (*model.Provider, error)
	SetProviderStatus(ctx context.Context, id string, status string) error
	RegisterProperty(ctx context.Context, property *model.Property) error
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	ListPropertiesByOwner(ctx context.Context, ownerID string) ([]*model.Property, error)
}

type directoryService struct {
	providers  repository.ProviderRepository
	properties repository.PropertyRepository
	validator  *validator.DirectoryValidator
	cfg        *config.Config
}

func NewDirectoryService(
	providers repository.ProviderRepository,
	properties repository.PropertyRepository,
	validator *validator.DirectoryValidator,
	cfg *config.Config,
) DirectoryService {
	return &directoryService{
		providers:  providers,
		properties: properties,
		validator:  validator,
		cfg:        cfg,
	}
}

func (s *directoryService) RegisterProvider(ctx context.Context, provider *model.Provider) error {
	if provider.Status == "" {
		provider.Status = model.ProviderPending
	}
	provider.ServiceTypeIDs = sanitizer.NormalizeIDs(provider.ServiceTypeIDs)

	if err := s.validator.ValidateProvider(provider); err != nil {
		s.cfg.Log.Warn("Provider validation failed", "error", err)
		return apperrors.Validation("Provider validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.providers.Create(ctx, provider); err != nil {
		s.cfg.Log.Error("Failed to register provider", "error", err)
		return apperrors.Internal("Failed to register provider", err)
	}

	s.cfg.Log.Info("Provider registered", "id", provider.ID, "status", provider.Status)
	return nil
}

func (s *directoryService) GetProvider(ctx context.Context, id string) (*model.Provider, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	provider, err := s.providers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrProviderNotFound) {
			return nil, apperrors.NotFoundWithID("Provider", id)
		}
		return nil, apperrors.Internal("Failed to retrieve provider", err)
	}

	return provider, nil
}

func (s *directoryService) SetProviderStatus(ctx context.Context, id string, status string) error {
	if id == "" {
		return apperrors.InvalidInput("Provider ID cannot be empty")
	}
	switch status {
	case model.ProviderActive, model.ProviderPending, model.ProviderSuspended:
	default:
		return apperrors.InvalidInput("Unknown provider status: " + status)
	}

	if err := s.providers.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, directoryerrors.ErrProviderNotFound) {
			return apperrors.NotFoundWithID("Provider", id)
		}
		return apperrors.Internal("Failed to update provider status", err)
	}

	s.cfg.Log.Info("Provider status updated", "id", id, "status", status)
	return nil
}

func (s *directoryService) RegisterProperty(ctx context.Context, property *model.Property) error {
	property.Address.Street = sanitizer.TrimAndNormalize(property.Address.Street)
	property.Address.City = sanitizer.TrimAndNormalize(property.Address.City)

	if err := s.validator.ValidateProperty(property); err != nil {
		s.cfg.Log.Warn("Property validation failed", "error", err)
		return apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.properties.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to register property", "error", err)
		return apperrors.Internal("Failed to register property", err)
	}

	s.cfg.Log.Info("Property registered", "id", property.ID, "owner_id", property.OwnerID)
	return nil
}

func (s *directoryService) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.properties.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrPropertyNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}

	return property, nil
}

func (s *directoryService) ListPropertiesByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	properties, err := s.properties.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list properties", err)
	}
	return properties, nil
}
