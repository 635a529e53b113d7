package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"papertrade/internal/entity"
	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/jwtauth"
	"papertrade/pkg/logger"
	"papertrade/pkg/utils"

	"gorm.io/gorm"
)

var netIDPattern = regexp.MustCompile(`^[a-z][a-z0-9]{2,19}$`)

// AuthService creates accounts and issues session tokens. Password checks
// are delegated to the campus identity provider upstream; this service
// trusts the net id it is handed.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, netID string) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error)
	SearchUsers(ctx context.Context, term string, excludeID uint) ([]dto.UserResponse, error)
}

// NewAuthService creates an auth service.
func NewAuthService(cfg *config.Config, users repository.UserRepository, log *logger.Logger) AuthService {
	ttl := 24 * time.Hour
	if cfg.Auth.TokenTTL != "" {
		if parsed, err := time.ParseDuration(cfg.Auth.TokenTTL); err == nil {
			ttl = parsed
		}
	}
	initialBalance := cfg.Trading.InitialBalance
	if initialBalance <= 0 {
		initialBalance = 1000
	}
	return &authService{
		users:          users,
		logger:         log,
		jwtSecret:      cfg.Auth.JWTSecret,
		tokenTTL:       ttl,
		initialBalance: initialBalance,
	}
}

type authService struct {
	users          repository.UserRepository
	logger         *logger.Logger
	jwtSecret      string
	tokenTTL       time.Duration
	initialBalance float64
}

// Register creates an account with the configured starting balance and a
// random avatar, then issues a token for it.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	netID := strings.ToLower(strings.TrimSpace(req.NetID))
	if !netIDPattern.MatchString(netID) {
		return nil, fmt.Errorf("%w: invalid net id %q", ErrValidation, req.NetID)
	}

	if _, err := s.users.FindByNetID(ctx, netID); err == nil {
		return nil, fmt.Errorf("%w: net id %s is taken", ErrAlreadyExists, netID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	avatarID := rand.Intn(10)
	if req.AvatarID != nil && *req.AvatarID >= 0 && *req.AvatarID <= 9 {
		avatarID = *req.AvatarID
	}

	user := &entity.User{
		NetID:       netID,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Balance:     s.initialBalance,
		AvatarID:    avatarID,
		IsActive:    true,
		LastLoginAt: utils.TimeNowEastern(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Account created",
		logger.StringField("net_id", netID),
		logger.Float64Field("initial_balance", s.initialBalance))

	return s.issueToken(user)
}

// Login issues a token for an existing account and records the login time.
func (s *authService) Login(ctx context.Context, netID string) (*dto.AuthResponse, error) {
	netID = strings.ToLower(strings.TrimSpace(netID))
	user, err := s.users.FindByNetID(ctx, netID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown net id %s", ErrNotFound, netID)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account %s is disabled", ErrForbidden, netID)
	}

	user.LastLoginAt = utils.TimeNowEastern()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "Failed to record login time",
			logger.StringField("net_id", netID), logger.ErrorField(err))
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	token, err := jwtauth.NewToken(user.ID, user.NetID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	}, nil
}

// GetProfile returns the authenticated user's own profile with balance.
func (s *authService) GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return &dto.ProfileResponse{
		UserResponse: dto.NewUserResponse(user),
		Balance:      user.Balance,
	}, nil
}

// SearchUsers finds accounts by net id substring, excluding the caller.
func (s *authService) SearchUsers(ctx context.Context, term string, excludeID uint) ([]dto.UserResponse, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if len(term) < 2 {
		return nil, fmt.Errorf("%w: search term must be at least 2 characters", ErrValidation)
	}
	users, err := s.users.SearchByNetID(ctx, term, excludeID)
	if err != nil {
		return nil, err
	}
	return mapUsers(users), nil
}
