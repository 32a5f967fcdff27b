package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/mail"
	"alcyxob/ecofit/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrInvalidResetToken    = errors.New("invalid or expired password reset token")
	ErrWeakPassword         = fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	ErrPasswordTooLong      = fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordLength)
)

const (
	MinPasswordLength = 8
	// bcrypt only reads the first 72 bytes and x/crypto refuses anything longer.
	MaxPasswordLength = 72
	tokenIssuer       = "ecofit"
	resetPurpose      = "password_reset"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, profile *domain.Profile, err error)
	IssueToken(profile *domain.Profile) (string, error)
	ParseToken(token string) (Principal, error)
	// RequestPasswordReset emails a reset link when the address is known. Unknown
	// addresses succeed silently.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthConfig struct {
	Secret          string
	Expiration      time.Duration
	ResetExpiration time.Duration
	// BaseURL is the frontend origin used to build links in emails.
	BaseURL string
}

// --- Service Implementation ---

type authService struct {
	profiles repository.ProfileRepository
	mailer   mail.Mailer
	cfg      AuthConfig
	calendar Calendar
	logger   *slog.Logger
}

func NewAuthService(profiles repository.ProfileRepository, mailer mail.Mailer, cfg AuthConfig, calendar Calendar, logger *slog.Logger) AuthService {
	if cfg.Secret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	if cfg.ResetExpiration <= 0 {
		cfg.ResetExpiration = time.Hour
	}
	return &authService{
		profiles: profiles,
		mailer:   mailer,
		cfg:      cfg,
		calendar: calendar,
		logger:   logger,
	}
}

// HashPassword enforces the length bounds and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(hashed), nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	if email == "" || password == "" {
		return "", nil, invalid("email and password cannot be empty")
	}

	profile, err := s.profiles.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.IssueToken(profile)
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

// AuthClaims is the payload of an access token.
type AuthClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

func (s *authService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", ErrTokenGeneration
	}
	return signed, nil
}

func (s *authService) registered(subject uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := s.calendar.now()
	return jwt.RegisteredClaims{
		Subject:   subject.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *authService) IssueToken(profile *domain.Profile) (string, error) {
	return s.sign(&AuthClaims{
		UserID:           profile.ID.String(),
		Role:             profile.Role,
		RegisteredClaims: s.registered(profile.ID, s.cfg.Expiration),
	})
}

// parse verifies the signature and algorithm; expiry is checked against the
// service clock by the caller.
func (s *authService) parse(tokenString string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	return err
}

func (s *authService) ParseToken(tokenString string) (Principal, error) {
	claims := &AuthClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return Principal{}, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.calendar.now(), true) {
		return Principal{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil || !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{ID: id, Role: claims.Role}, nil
}

// passwordFingerprint ties a reset token to the hash it was issued against, so
// the token stops working once the password changes.
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return invalid("email is required")
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.InfoContext(ctx, "password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.sign(&resetClaims{
		Purpose:          resetPurpose,
		Fingerprint:      passwordFingerprint(profile.PasswordHash),
		RegisteredClaims: s.registered(profile.ID, s.cfg.ResetExpiration),
	})
	if err != nil {
		return err
	}

	msg, err := mail.RenderPasswordReset(mail.PasswordResetEmail{
		To:       profile.Email,
		Name:     profile.Name,
		ResetURL: strings.TrimRight(s.cfg.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token),
		ValidFor: s.cfg.ResetExpiration,
	})
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "password reset email failed", "profile_id", profile.ID, "error", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims := &resetClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return ErrInvalidResetToken
	}
	if claims.Purpose != resetPurpose || !claims.VerifyExpiresAt(s.calendar.now(), true) {
		return ErrInvalidResetToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrInvalidResetToken
	}

	profile, err := s.profiles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if passwordFingerprint(profile.PasswordHash) != claims.Fingerprint {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	profile.PasswordHash = hash
	profile.UpdatedAt = s.calendar.now()
	return s.profiles.Update(ctx, profile)
}
