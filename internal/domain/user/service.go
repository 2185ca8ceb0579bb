// internal/domain/user/service.go
package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	emailService    *email.EmailService
	logger          *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, emailService *email.EmailService, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		emailService:    emailService,
		logger:          logger,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailRequest represents OTP verification data
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new, unverified user account and emails a verification code
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Email))

	var existing User
	if err := s.db.Where("email = ?", normalized).First(&existing).Error; err == nil {
		return nil, apperrors.Conflict("user with this email already exists")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	expiry := time.Now().UTC().Add(s.config.Security.OTPExpiry)

	u := User{
		Name:                  req.Name,
		Email:                 normalized,
		Password:              hashedPassword,
		IsAdmin:               false,
		IsVerified:            false,
		VerificationOTP:       auth.HashOTP(otp),
		VerificationOTPExpiry: &expiry,
	}

	if err := s.db.Create(&u).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.emailService.SendVerificationOTP(ctx, u.Email, u.Name, otp); err != nil {
		// The account exists; the user can request a new code
		s.logger.WithError(err).WithField("email", u.Email).
			Warn("Failed to send verification email")
	}

	return &u, nil
}

// VerifyEmail checks the OTP and marks the account verified
func (s *Service) VerifyEmail(req *VerifyEmailRequest) (*User, error) {
	u, err := s.findByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if u.IsVerified {
		return nil, apperrors.Conflict("account is already verified")
	}

	if u.OTPExpired(time.Now().UTC()) {
		return nil, apperrors.Validation("verification code has expired")
	}

	hashed := auth.HashOTP(req.OTP)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(u.VerificationOTP)) != 1 {
		return nil, apperrors.Validation("invalid verification code")
	}

	updates := map[string]interface{}{
		"is_verified":             true,
		"verification_otp":        "",
		"verification_otp_expiry": nil,
	}
	if err := s.db.Model(u).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	u.IsVerified = true
	return u, nil
}

// ResendOTP issues and emails a fresh verification code
func (s *Service) ResendOTP(ctx context.Context, emailAddr string) error {
	u, err := s.findByEmail(emailAddr)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperrors.Conflict("account is already verified")
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return apperrors.Internal(err)
	}
	expiry := time.Now().UTC().Add(s.config.Security.OTPExpiry)

	updates := map[string]interface{}{
		"verification_otp":        auth.HashOTP(otp),
		"verification_otp_expiry": expiry,
	}
	if err := s.db.Model(u).Updates(updates).Error; err != nil {
		return apperrors.Internal(err)
	}

	if err := s.emailService.SendVerificationOTP(ctx, u.Email, u.Name, otp); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Login authenticates a verified user and issues a token pair
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	u, err := s.findByEmail(req.Email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.Auth("invalid email or password")
		}
		return nil, err
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, apperrors.Auth("invalid email or password")
	}

	if !u.IsVerified {
		return nil, apperrors.Auth("account is not verified, check your email for the verification code")
	}

	return s.issueTokens(u)
}

// RefreshToken exchanges a refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Auth("invalid or expired refresh token")
	}

	var u User
	if err := s.db.First(&u, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Auth("user no longer exists")
		}
		return nil, apperrors.Internal(err)
	}

	return s.issueTokens(&u)
}

// GetProfile retrieves a user by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &u, nil
}

func (s *Service) findByEmail(emailAddr string) (*User, error) {
	var u User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(emailAddr))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal(err)
	}
	return &u, nil
}

func (s *Service) issueTokens(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
