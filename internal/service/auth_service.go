package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/vaikuntha/config"
	"github.com/lshigami/vaikuntha/internal/apierr"
	"github.com/lshigami/vaikuntha/internal/dto"
	"github.com/lshigami/vaikuntha/internal/model"
	"github.com/lshigami/vaikuntha/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload. Subject holds the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService registers users, issues access tokens and resolves them back to actors.
type AuthService interface {
	// Register creates a student or instructor account and returns a token for it.
	Register(ctx context.Context, req dto.RegisterDTO) (*dto.AuthResponseDTO, error)
	// Login checks the credentials of an active account.
	Login(ctx context.Context, req dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context, actor Actor) (*dto.UserResponseDTO, error)
	ParseToken(token string) (*Claims, error)
	// Authenticate parses the token and confirms the user still exists and is active.
	Authenticate(ctx context.Context, token string) (Actor, error)
}

type authService struct {
	userRepo repository.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		secret:   []byte(cfg.Auth.JWTSecret),
		ttl:      cfg.Auth.TokenTTL,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Register(ctx context.Context, req dto.RegisterDTO) (*dto.AuthResponseDTO, error) {
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	if role != model.RoleStudent && role != model.RoleInstructor {
		return nil, apierr.Forbidden("forbidden", "role %q cannot be self-assigned", role)
	}

	email := normalizeEmail(req.Email)
	taken, err := s.userRepo.EmailExists(ctx, email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apierr.Conflict("email_taken", "email is already registered")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if apierr.Is(repository.Translate(err, "user"), http.StatusConflict) {
			return nil, apierr.Conflict("email_taken", "email is already registered")
		}
		return nil, err
	}
	log.Info().Str("userID", user.ID.String()).Str("role", user.Role).Msg("User registered")
	return s.issue(&user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierr.Unauthorized("invalid_credentials", "invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apierr.Unauthorized("invalid_credentials", "invalid email or password")
	}
	if !user.IsActive {
		return nil, apierr.Forbidden("account_disabled", "this account has been disabled")
	}
	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, actor Actor) (*dto.UserResponseDTO, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repository.Translate(err, "user")
	}
	var resp dto.UserResponseDTO
	copier.Copy(&resp, user)
	return &resp, nil
}

func (s *authService) issue(user *model.User) (*dto.AuthResponseDTO, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	resp := dto.AuthResponseDTO{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt}
	copier.Copy(&resp.User, user)
	return &resp, nil
}

func (s *authService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, apierr.Unauthorized("invalid_token", "invalid or expired token")
	}
	return claims, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (Actor, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return Actor{}, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, apierr.Unauthorized("invalid_token", "invalid token subject")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return Actor{}, apierr.Unauthorized("invalid_token", "user no longer exists")
		}
		return Actor{}, err
	}
	if !user.IsActive {
		return Actor{}, apierr.Forbidden("account_disabled", "this account has been disabled")
	}
	// The stored role wins over the token so demotions apply immediately.
	return Actor{ID: user.ID, Role: user.Role}, nil
}
