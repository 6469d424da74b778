package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/database"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-meals/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = &Error{Kind: ErrConflict, Msg: "User with this username or email already exists"}
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Msg: "Invalid credentials"}
	ErrSessionExpired     = &Error{Kind: ErrUnauthenticated, Msg: "Session expired, please sign in again"}
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return nil, validation("Username must be between 3 and 50 characters")
	}
	if !validEmail(email) {
		return nil, validation("A valid email address is required")
	}
	if len(req.Password) < 8 {
		return nil, validation("Password must be at least 8 characters")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if !validEmail(email) || req.Password == "" {
		return nil, validation("Email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginFailures.Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.LoginFailures.Inc()
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// ResolveIdentity loads the user and their families. A user that no longer
// exists is reported as ErrSessionExpired.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*session.Identity, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Memberships.Family").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	identity := &session.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Families: make([]session.FamilyRef, 0, len(user.Memberships)),
	}
	for _, m := range user.Memberships {
		ref := session.FamilyRef{ID: m.FamilyID, IsAdmin: m.IsAdmin}
		if m.Family != nil {
			ref.Name = m.Family.Name
		}
		identity.Families = append(identity.Families, ref)
	}
	return identity, nil
}

// IssueToken signs an HS256 session token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
