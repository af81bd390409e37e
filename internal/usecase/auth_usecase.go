package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/repository"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
)

const minPasswordLength = 8

// SessionConfig controls how long issued tokens live.
type SessionConfig struct {
	TokenTTL          time.Duration
	FederatedTokenTTL time.Duration
	OTPTTL            time.Duration
}

type AuthUseCase struct {
	userRepo  repository.UserRepository
	adminRepo repository.AdminConfigRepository
	otpRepo   repository.OTPRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	verifier  IdentityVerifier
	events    EventPublisher
	session   SessionConfig
	now       func() time.Time
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	adminRepo repository.AdminConfigRepository,
	otpRepo repository.OTPRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	verifier IdentityVerifier,
	events EventPublisher,
	session SessionConfig,
) *AuthUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	if session.TokenTTL <= 0 {
		session.TokenTTL = 24 * time.Hour
	}
	if session.FederatedTokenTTL <= 0 {
		session.FederatedTokenTTL = 7 * 24 * time.Hour
	}
	if session.OTPTTL <= 0 {
		session.OTPTTL = 10 * time.Minute
	}
	return &AuthUseCase{
		userRepo:  userRepo,
		adminRepo: adminRepo,
		otpRepo:   otpRepo,
		hasher:    hasher,
		tokens:    tokens,
		verifier:  verifier,
		events:    events,
		session:   session,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresIn time.Duration
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if name == "" || email == "" {
		return nil, errors.Validation("Name and email are required", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, errors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("Email already in use")
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.Internal("Failed to check email", err)
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     entity.ProviderLocal,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("Email already in use")
		}
		return nil, errors.Internal("Failed to create user record", err)
	}

	logger.Info("User registered: %s", user.ID)
	return uc.issue(user, uc.session.TokenTTL)
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, errors.Internal("Failed to look up user", err)
	}
	if !user.HasPassword() {
		return nil, errors.Unauthorized("This account uses social login; sign in with your provider or set a password first", nil)
	}
	if !uc.hasher.Compare(user.PasswordHash, password) {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	return uc.issue(user, uc.session.TokenTTL)
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, loadError(err, "User")
	}
	return user, nil
}

// FederatedLogin signs in a user vouched for by Google or Firebase, creating
// the account on first use.
func (uc *AuthUseCase) FederatedLogin(ctx context.Context, identity FederatedIdentity) (*AuthResult, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, errors.Unauthorized("Identity provider did not return an email", nil)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsNGO() && !user.IsProfileCompleted {
			return nil, errors.Forbidden("NGO account is pending profile completion", nil)
		}
	case stderrors.Is(err, repository.ErrNotFound):
		user, err = uc.createFederatedUser(ctx, email, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Internal("Failed to look up user", err)
	}

	return uc.issue(user, uc.session.FederatedTokenTTL)
}

// FirebaseLogin verifies a Firebase ID token and runs FederatedLogin.
func (uc *AuthUseCase) FirebaseLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if uc.verifier == nil {
		return nil, errors.New(errors.CodeInternal, "Firebase login is not configured", http.StatusServiceUnavailable, nil)
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, errors.Validation("idToken is required", nil)
	}

	identity, err := uc.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Unauthorized("Invalid Firebase token", err)
	}
	if identity.Provider == "" {
		identity.Provider = entity.ProviderFirebase
	}
	return uc.FederatedLogin(ctx, *identity)
}

func (uc *AuthUseCase) createFederatedUser(ctx context.Context, email string, identity FederatedIdentity) (*entity.User, error) {
	isAdmin, err := uc.adminRepo.IsAdminEmail(ctx, email)
	if err != nil {
		return nil, errors.Internal("Failed to check admin list", err)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}

	now := uc.now()
	user := &entity.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Provider:  identity.Provider,
		Role:      entity.RoleUser,
		Photo:     identity.Photo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if isAdmin {
		user.Role = entity.RoleAdmin
		user.IsProfileCompleted = true
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Internal("Failed to create user record", err)
	}

	logger.Info("Federated user created: %s (%s, role %s)", user.ID, user.Provider, user.Role)
	return user, nil
}

// SendOTP stores a fresh 6-digit code for email and mails it.
func (uc *AuthUseCase) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := uc.userRepo.GetByEmail(ctx, email); err != nil {
		return loadError(err, "User")
	}

	code, err := generateOTP()
	if err != nil {
		return errors.Internal("Failed to generate OTP", err)
	}
	if err := uc.otpRepo.Save(ctx, email, code, uc.session.OTPTTL); err != nil {
		return errors.Internal("Failed to store OTP", err)
	}

	uc.events.Publish(ctx, entity.DomainEvent{
		Type:       entity.EventPasswordResetRequested,
		Email:      email,
		OTP:        code,
		OccurredAt: uc.now(),
	})
	return nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email = normalizeEmail(email)
	if len(newPassword) < minPasswordLength {
		return errors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	stored, err := uc.otpRepo.Get(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.Validation("Invalid or expired OTP", nil)
		}
		return errors.Internal("Failed to read OTP", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(otp))) != 1 {
		return errors.Validation("Invalid or expired OTP", nil)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return loadError(err, "User")
	}
	if err := uc.storePassword(ctx, user, newPassword); err != nil {
		return err
	}

	if err := uc.otpRepo.Delete(ctx, email); err != nil {
		logger.Warn("Failed to delete OTP for %s: %v", email, err)
	}
	logger.Info("Password reset for user %s", user.ID)
	return nil
}

// SetPassword lets a federated account add a password once.
func (uc *AuthUseCase) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < minPasswordLength {
		return errors.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return loadError(err, "User")
	}
	if user.HasPassword() {
		return errors.Conflict("Password is already set")
	}
	return uc.storePassword(ctx, user, password)
}

func (uc *AuthUseCase) storePassword(ctx context.Context, user *entity.User, password string) error {
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return errors.Internal("Failed to hash password", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return errors.Internal("Failed to update password", err)
	}
	return nil
}

func (uc *AuthUseCase) issue(user *entity.User, ttl time.Duration) (*AuthResult, error) {
	token, err := uc.tokens.Issue(user.ID, user.Role, ttl)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresIn: ttl}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
