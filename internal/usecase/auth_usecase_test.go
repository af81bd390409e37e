package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotrack/internal/adapter/repository/memory"
	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/pkg/errors"
)

type authFixture struct {
	users  repository.UserRepository
	otps   repository.OTPRepository
	events *recordingPublisher
	uc     *AuthUseCase
}

func newAuthFixture(t *testing.T, verifier IdentityVerifier, admins ...string) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  memory.NewUserRepository(),
		otps:   memory.NewOTPRepository(),
		events: &recordingPublisher{},
	}
	f.uc = NewAuthUseCase(f.users, memory.NewAdminConfigRepository(admins...), f.otps, plainHasher{}, staticTokens{}, verifier, f.events, SessionConfig{})
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)

	result, err := f.uc.Register(ctx, RegisterInput{Name: "Meera", Email: " Meera@Example.com ", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, result.User.Role)
	assert.Equal(t, "meera@example.com", result.User.Email)
	assert.Equal(t, 24*time.Hour, result.ExpiresIn)
	assert.NotEmpty(t, result.Token)

	_, err = f.uc.Register(ctx, RegisterInput{Name: "Dup", Email: "meera@example.com", Password: "s3cretpass"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = f.uc.Register(ctx, RegisterInput{Name: "Short", Email: "s@example.com", Password: "short"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	login, err := f.uc.Login(ctx, "MEERA@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	_, err = f.uc.Login(ctx, "meera@example.com", "wrong-password")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = f.uc.Login(ctx, "nobody@example.com", "s3cretpass")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestLoginRejectsFederatedAccountWithoutPassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	require.NoError(t, f.users.Create(ctx, &entity.User{ID: "g1", Email: "g@example.com", Provider: entity.ProviderGoogle, Role: entity.RoleUser}))

	_, err := f.uc.Login(ctx, "g@example.com", "anything1")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	require.NoError(t, f.uc.SetPassword(ctx, "g1", "newpassword"))
	_, err = f.uc.Login(ctx, "g@example.com", "newpassword")
	assert.NoError(t, err)

	err = f.uc.SetPassword(ctx, "g1", "anotherpass")
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	_, err := f.uc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "original1"})
	require.NoError(t, err)

	err = f.uc.SendOTP(ctx, "ghost@example.com")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	require.NoError(t, f.uc.SendOTP(ctx, "ana@example.com"))
	sent := f.events.ofType(entity.EventPasswordResetRequested)
	require.Len(t, sent, 1)
	assert.Len(t, sent[0].OTP, 6)
	assert.Equal(t, "ana@example.com", sent[0].Email)

	wrong := "000000"
	if sent[0].OTP == wrong {
		wrong = "111111"
	}
	err = f.uc.ResetPassword(ctx, "ana@example.com", wrong, "changed123")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	require.NoError(t, f.uc.ResetPassword(ctx, "ana@example.com", sent[0].OTP, "changed123"))

	_, err = f.uc.Login(ctx, "ana@example.com", "changed123")
	assert.NoError(t, err)

	// code is single use
	err = f.uc.ResetPassword(ctx, "ana@example.com", sent[0].OTP, "again12345")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestFederatedLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("first login creates user", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		result, err := f.uc.FederatedLogin(ctx, FederatedIdentity{Email: "new@example.com", Name: "New", Provider: entity.ProviderGoogle})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleUser, result.User.Role)
		assert.False(t, result.User.IsProfileCompleted)
		assert.Equal(t, 7*24*time.Hour, result.ExpiresIn)
	})

	t.Run("allow-listed email becomes admin", func(t *testing.T) {
		f := newAuthFixture(t, nil, "boss@example.com")
		result, err := f.uc.FederatedLogin(ctx, FederatedIdentity{Email: "Boss@example.com", Provider: entity.ProviderGoogle})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, result.User.Role)
		assert.True(t, result.User.IsProfileCompleted)
		assert.Equal(t, "boss", result.User.Name)
	})

	t.Run("incomplete ngo is forbidden", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		require.NoError(t, f.users.Create(ctx, &entity.User{ID: "n1", Email: "ngo@example.com", Role: entity.RoleNGO}))
		_, err := f.uc.FederatedLogin(ctx, FederatedIdentity{Email: "ngo@example.com", Provider: entity.ProviderGoogle})
		assert.True(t, errors.Is(err, errors.CodeForbidden))
	})

	t.Run("existing user keeps account", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		require.NoError(t, f.users.Create(ctx, &entity.User{ID: "u1", Email: "old@example.com", Role: entity.RoleUser}))
		result, err := f.uc.FederatedLogin(ctx, FederatedIdentity{Email: "old@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "u1", result.User.ID)
	})
}

func TestFirebaseLogin(t *testing.T) {
	ctx := context.Background()

	f := newAuthFixture(t, stubVerifier{identity: &FederatedIdentity{Email: "fb@example.com", Name: "Fire"}})
	result, err := f.uc.FirebaseLogin(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderFirebase, result.User.Provider)

	_, err = f.uc.FirebaseLogin(ctx, "")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	bad := newAuthFixture(t, stubVerifier{err: fmt.Errorf("token expired")})
	_, err = bad.uc.FirebaseLogin(ctx, "id-token")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	unconfigured := newAuthFixture(t, nil)
	_, err = unconfigured.uc.FirebaseLogin(ctx, "id-token")
	assert.Error(t, err)
}
