// internal/domain/user/service_test.go
package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-for-unit-tests",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost: 4,
			OTPExpiry:  10 * time.Minute,
		},
		Email: config.EmailConfig{
			Provider: "log",
			FromName: "Storefront",
		},
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := testConfig()
	return NewService(db, cfg, email.NewEmailService(cfg, log), log), db
}

// verifyDirectly flips the account to verified, bypassing the OTP flow
func verifyDirectly(t *testing.T, db *gorm.DB, emailAddr string) {
	t.Helper()
	require.NoError(t, db.Model(&User{}).Where("email = ?", emailAddr).
		Update("is_verified", true).Error)
}

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	svc, db := newTestService(t)

	u, err := svc.Register(context.Background(), &RegisterRequest{
		Name:     "Jane",
		Email:    "Jane@Example.COM",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", u.Email)
	assert.False(t, u.IsVerified)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "secret123", u.Password)
	assert.NotEmpty(t, u.VerificationOTP)
	require.NotNil(t, u.VerificationOTPExpiry)

	var stored User
	require.NoError(t, db.Where("email = ?", "jane@example.com").First(&stored).Error)
	assert.Len(t, stored.VerificationOTP, 64) // sha256 hex, never the raw code
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Name: "Other", Email: "JANE@example.com", Password: "secret456",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestVerifyEmailFlow(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	// The service stores only the hash, so plant a known code
	otp := "123456"
	require.NoError(t, db.Model(&User{}).Where("email = ?", "jane@example.com").
		Update("verification_otp", auth.HashOTP(otp)).Error)

	_, err = svc.VerifyEmail(&VerifyEmailRequest{Email: "jane@example.com", OTP: "999999"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	u, err := svc.VerifyEmail(&VerifyEmailRequest{Email: "jane@example.com", OTP: otp})
	require.NoError(t, err)
	assert.True(t, u.IsVerified)

	// Second verification attempt is rejected
	_, err = svc.VerifyEmail(&VerifyEmailRequest{Email: "jane@example.com", OTP: otp})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestVerifyEmailExpiredOTP(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	otp := "123456"
	expired := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, db.Model(&User{}).Where("email = ?", "jane@example.com").
		Updates(map[string]interface{}{
			"verification_otp":        auth.HashOTP(otp),
			"verification_otp_expiry": expired,
		}).Error)

	_, err = svc.VerifyEmail(&VerifyEmailRequest{Email: "jane@example.com", OTP: otp})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestLoginRequiresVerifiedAccount(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))

	verifyDirectly(t, db, "jane@example.com")

	resp, err := svc.Login(&LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "jane@example.com", resp.User.Email)
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	verifyDirectly(t, db, "jane@example.com")

	_, err = svc.Login(&LoginRequest{Email: "jane@example.com", Password: "wrong-pass1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))

	// Unknown email yields the same error kind, not a not-found leak
	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
}

func TestRefreshToken(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	verifyDirectly(t, db, "jane@example.com")

	resp, err := svc.Login(&LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token
	_, err = svc.RefreshToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
}

func TestGetProfile(t *testing.T) {
	svc, _ := newTestService(t)

	u, err := svc.Register(context.Background(), &RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	got, err := svc.GetProfile(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.GetProfile(999)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
