package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/pkg/config"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

// AuthService issues and validates operator tokens. The tool is
// single-operator: the bcrypt hash of the admin password lives in config, not
// in a user table. When no hash is configured the API runs open: the JWT
// guard passes every request through and Login reports that authentication
// is not configured.
type AuthService struct {
	cfg       config.AuthConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an auth service.
func NewAuthService(cfg config.AuthConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{cfg: cfg, validator: validate, logger: logger}
}

// Enabled reports whether password protection is configured.
func (s *AuthService) Enabled() bool {
	return s.cfg.PasswordHash != ""
}

// Login verifies the operator password and returns a signed token.
func (s *AuthService) Login(req dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "authentication is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login rejected")
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid password")
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		Issuer:    "dersplan",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &dto.TokenResponse{Token: signed, ExpiresIn: int64(s.cfg.Expiration.Seconds())}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}
