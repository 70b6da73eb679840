package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"linkspace/internal/database"
	"linkspace/pkg/jwt"
)

const PasswordMinEntropyBits = 30

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// User is the public shape of an account, safe to return to clients.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	InviteCode string `json:"inviteCode"`
}

type Service struct {
	db     *database.Database
	tokens *jwt.JWT
}

func NewService(db *database.Database, tokens *jwt.JWT) *Service {
	return &Service{db: db, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*User, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", errors.New("username, email and password are required")
	}
	if err := passwordvalidator.Validate(password, PasswordMinEntropyBits); err != nil {
		return nil, "", err
	}

	var existing database.User
	err := s.db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	inviteCode, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return nil, "", err
	}

	record := &database.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		InviteCode:   inviteCode,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(record.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return toUser(record), token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	var record database.User
	err := s.db.WithContext(ctx).First(&record, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(record.ID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return toUser(&record), token, nil
}

func (s *Service) UserByID(ctx context.Context, id string) (*User, error) {
	var record database.User
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toUser(&record), nil
}

func (s *Service) uniqueInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := GenerateInviteCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&database.User{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique invite code")
}

func toUser(record *database.User) *User {
	return &User{
		ID:         record.ID,
		Username:   record.Username,
		Email:      record.Email,
		InviteCode: record.InviteCode,
	}
}
