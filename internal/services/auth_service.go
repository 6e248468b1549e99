package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"casasmart/internal/authz"
	"casasmart/internal/models"
	"casasmart/internal/repositories"
)

const minPasswordLen = 8

type AuthService struct {
	repo     repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(repo repositories.UserRepository, secret string, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, secret: []byte(secret), tokenTTL: tokenTTL, log: log, now: time.Now}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.CreateUser(ctx, req, authz.RoleCustomer)
}

// CreateUser creates an account with the given role (admins create other admins).
func (s *AuthService) CreateUser(ctx context.Context, req models.RegisterRequest, roleID int) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "is not a valid address")
	}
	if len(req.Password) < minPasswordLen {
		return nil, invalid("password", "must be at least 8 characters")
	}
	if authz.NormalizePhone(req.Phone) == "" {
		return nil, invalid("phone", "is required")
	}
	if !authz.ValidRole(roleID) {
		return nil, invalid("role_id", "unknown role")
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		RoleID:       roleID,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storageErr("create user", err)
	}
	s.log.Info("user created", zap.String("user_id", u.ID.String()), zap.Int("role_id", roleID))
	return u, nil
}

// Login checks the password and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, storageErr("get user by email", err)
	}
	if u == nil || strings.TrimSpace(u.PasswordHash) == "" {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Info("[auth][login] bcrypt mismatch", zap.String("user_id", u.ID.String()))
		return "", nil, ErrInvalidCredentials
	}
	token, err := authz.IssueToken(s.secret, u.ID, u.RoleID, u.Phone, s.now(), s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// EnsureAdmin creates the bootstrap operator account on first start.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, phone string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return storageErr("get user by email", err)
	}
	if existing != nil {
		return nil
	}
	if phone == "" {
		phone = "0000000000"
	}
	_, err = s.CreateUser(ctx, models.RegisterRequest{Email: email, Password: password, Name: "Administrator", Phone: phone}, authz.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get user", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}
