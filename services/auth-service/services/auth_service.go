package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/shopswift/pkg/aws"
	"github.com/yashrajoria/shopswift/services/auth-service/models"
	"github.com/yashrajoria/shopswift/services/auth-service/repository"
	"github.com/yashrajoria/shopswift/services/auth-service/types"
	"github.com/yashrajoria/shopswift/services/common/auth"
	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
	"github.com/yashrajoria/shopswift/services/common/events"
	"github.com/yashrajoria/shopswift/services/common/logger"
)

var (
	ErrUserExists         = apperrors.BadRequest("User already exists")
	ErrInvalidCredentials = apperrors.BadRequest("Invalid credentials")
	ErrLoginIdentifier    = apperrors.BadRequest("Either email or username is required")
	ErrUserNotFound       = apperrors.NotFound("User not found")
	ErrAddressNotFound    = apperrors.NotFound("Address not found")
)

type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByLogin(ctx context.Context, email, username string) (*models.User, error)
	AddAddress(ctx context.Context, userID string, addr models.Address) error
	UpdateAddress(ctx context.Context, userID string, addr models.Address) error
	RemoveAddress(ctx context.Context, userID, addressID string) error
}

// ITokenService is satisfied by *auth.TokenManager.
type ITokenService interface {
	Issue(id auth.Identity) (string, time.Time, error)
	Verify(token string) (auth.Identity, time.Time, error)
}

// Session is a freshly issued token for a user.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      auth.Identity
}

type AuthService struct {
	userRepo  IUserRepository
	tokens    ITokenService
	denylist  auth.Denylist
	hasher    *PasswordHasher
	publisher events.Publisher
	metrics   *awspkg.MetricsClient
	now       func() time.Time
}

func NewAuthService(ur IUserRepository, ts ITokenService, denylist auth.Denylist, hasher *PasswordHasher, publisher events.Publisher, metrics *awspkg.MetricsClient) *AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuthService{
		userRepo:  ur,
		tokens:    ts,
		denylist:  denylist,
		hasher:    hasher,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.userRepo.FindByLogin(ctx, email, req.Username)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	now := s.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     email,
		Password:  hashed,
		Fullname:  models.Fullname{FirstName: req.Fullname.FirstName, LastName: req.Fullname.LastName},
		Role:      role,
		Addresses: []models.Address{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, apperrors.Internal(err)
	}

	logger.Info(ctx, "user registered", zap.String("user_id", user.ID), zap.String("role", role))
	s.metrics.RecordCountAsync(awspkg.MetricUsersRegistered, map[string]string{"Role": role})
	events.PublishAsync(s.publisher, events.New(events.UserRegistered, user.ID, user.Identity()))

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (*Session, error) {
	if req.Email == "" && req.Username == "" {
		return nil, ErrLoginIdentifier
	}

	user, err := s.userRepo.FindByLogin(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if !s.hasher.Matches(user.Password, req.Password) {
		logger.Warn(ctx, "failed login attempt", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Logout denylists token for the rest of its lifetime. Tokens that no longer
// verify are already unusable and are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, exp, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}

	if err := s.denylist.Revoke(ctx, token, exp.Sub(s.now())); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetUser is used by other services to resolve a user's contact details.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *AuthService) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if user.Addresses == nil {
		return []models.Address{}, nil
	}
	return user.Addresses, nil
}

func (s *AuthService) AddAddress(ctx context.Context, userID string, req types.AddressRequest) (*models.Address, error) {
	addr := toAddress(uuid.NewString(), req)
	if err := s.userRepo.AddAddress(ctx, userID, addr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return &addr, nil
}

func (s *AuthService) UpdateAddress(ctx context.Context, userID, addressID string, req types.AddressRequest) (*models.Address, error) {
	addr := toAddress(addressID, req)
	if err := s.userRepo.UpdateAddress(ctx, userID, addr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return &addr, nil
}

func (s *AuthService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if err := s.userRepo.RemoveAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	id := user.Identity()
	token, exp, err := s.tokens.Issue(id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: id}, nil
}

func toAddress(id string, req types.AddressRequest) models.Address {
	return models.Address{
		ID:      id,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
		Country: req.Country,
	}
}
