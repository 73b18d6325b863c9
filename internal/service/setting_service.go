package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type settingRepository interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	Put(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]models.Setting, error)
	Map(ctx context.Context) (map[string]string, error)
}

// SettingService exposes the persisted settings surface and typed snapshots
// of it.
type SettingService struct {
	repo      settingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs a setting service.
func NewSettingService(repo settingRepository, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, validator: validate, logger: logger}
}

// List returns all settings.
func (s *SettingService) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	return settings, nil
}

// Get returns one setting value, empty when absent.
func (s *SettingService) Get(ctx context.Context, key string) (string, error) {
	value, err := s.repo.Get(ctx, key, "")
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setting")
	}
	return value, nil
}

// Put upserts one setting value.
func (s *SettingService) Put(ctx context.Context, key string, req dto.SettingRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid setting payload")
	}
	if key == "" {
		return appErrors.Clone(appErrors.ErrValidation, "setting key is required")
	}
	if err := s.repo.Put(ctx, key, req.Value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store setting")
	}
	s.logger.Sugar().Infow("setting updated", "key", key)
	return nil
}

// SolveSettings returns the typed solver snapshot.
func (s *SettingService) SolveSettings(ctx context.Context) (models.SolveSettings, error) {
	values, err := s.repo.Map(ctx)
	if err != nil {
		return models.SolveSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return models.SolveSettingsFromMap(values), nil
}

// PresentationSettings returns the typed rendering snapshot.
func (s *SettingService) PresentationSettings(ctx context.Context) (models.PresentationSettings, error) {
	values, err := s.repo.Map(ctx)
	if err != nil {
		return models.PresentationSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return models.PresentationSettingsFromMap(values), nil
}
