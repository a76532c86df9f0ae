package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordBytes is the bcrypt input limit; longer passwords are rejected by bcrypt.
	maxPasswordBytes = 72

	defaultResetTokenTTL = time.Hour
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに完全一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Activate sets is_active and clears the activation token in a single conditional update.
	// It returns ErrUserNotFound when no row holds the token.
	Activate(ctx context.Context, token string) error

	// SetResetToken stores a reset token and its expiry for the user.
	SetResetToken(ctx context.Context, userID uint, token string, expires time.Time) error

	// ResetPassword replaces the password of the user holding a reset token that
	// is still valid at now, clearing token and expiry together.
	// It returns the user's ID, or ErrUserNotFound when no valid token matches.
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (uint, error)

	// ClearExpiredResetTokens clears token and expiry of every reset that expired before now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Notifier sends the transactional emails of the auth flow.
type Notifier interface {
	SendActivation(ctx context.Context, to, name, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Sessions is the part of SessionManager used by the auth usecase.
type Sessions interface {
	Establish(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error)
	RevokeAll(ctx context.Context, userID uint) error
}

// Config holds the tunables of the credential and token service.
type Config struct {
	// BcryptCost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	BcryptCost int
	// ResetTokenTTL is how long a password reset token stays valid. Zero means one hour.
	ResetTokenTTL time.Duration
	// ActivationURL is the verify endpoint; the token is appended as the "token" query parameter.
	ActivationURL string
	// ResetURL is the client page handling resets; the token is appended as "reset_token".
	ResetURL string
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Gender    string
	BirthDate *time.Time
	Address   string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users     UserRepository
	notifier  Notifier
	sessions  Sessions
	cfg       Config
	newToken  TokenGenerator
	now       func() time.Time
	dummyHash []byte
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, notifier Notifier, sessions Sessions, cfg Config) *authUsecase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	// ユーザーが存在しない場合でも同じコストのbcrypt比較を実行するためのダミーハッシュ
	dummy, err := bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), cfg.BcryptCost)
	if err != nil {
		dummy = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	}
	return &authUsecase{
		users:     users,
		notifier:  notifier,
		sessions:  sessions,
		cfg:       cfg,
		newToken:  RandomToken,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes long", ErrValidation, maxPasswordBytes)
	}
	return nil
}

func (u *authUsecase) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register はハッシュ化されたパスワードと有効化トークンで新規ユーザーを登録し、有効化メールを送信します。
// The user row is committed before the email is sent; a send failure returns
// ErrActivationEmailFailed without undoing the registration.
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) error {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}

	if _, err := u.users.FindByEmail(ctx, in.Email); err == nil {
		return ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := u.hash(in.Password)
	if err != nil {
		return err
	}
	token, err := u.newToken()
	if err != nil {
		return err
	}

	user := &entity.User{
		Email:           in.Email,
		Password:        hashed,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Phone:           in.Phone,
		Gender:          in.Gender,
		BirthDate:       in.BirthDate,
		Address:         in.Address,
		IsActive:        false,
		ActivationToken: &token,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	link := withQuery(u.cfg.ActivationURL, "token", token)
	if err := u.notifier.SendActivation(ctx, user.Email, user.FirstName, link); err != nil {
		return fmt.Errorf("%w: %v", ErrActivationEmailFailed, err)
	}
	return nil
}

// VerifyActivation consumes an activation token. A token can be used only once.
func (u *authUsecase) VerifyActivation(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := u.users.Activate(ctx, token); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to activate user: %w", err)
	}
	return nil
}

// Login はユーザーを認証し、成功時にセッションを確立します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*entity.Session, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash := u.dummyHash
	if err == nil {
		passwordHash = []byte(user.Password)
	}

	// タイミング攻撃防止のため、常にパスワードを検証
	compareErr := bcrypt.CompareHashAndPassword(passwordHash, []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	session, err := u.sessions.Establish(ctx, user.ID, user.DisplayName(), user.Email, client)
	if err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}
	return session, nil
}

// RequestPasswordReset stores a fresh reset token for an existing email and mails it.
// Unknown emails are not an error. The returned error is for logging only and
// must never change what the client is told.
func (u *authUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := u.newToken()
	if err != nil {
		return err
	}
	expires := u.now().Add(u.cfg.ResetTokenTTL)
	if err := u.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := withQuery(u.cfg.ResetURL, "reset_token", token)
	if err := u.notifier.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("%w: %v", ErrResetEmailFailed, err)
	}
	return nil
}

// ResetPassword sets a new password using a valid reset token and revokes the user's sessions.
func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := u.hash(newPassword)
	if err != nil {
		return err
	}

	userID, err := u.users.ResetPassword(ctx, token, hashed, u.now())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if err := u.sessions.RevokeAll(ctx, userID); err != nil {
		slog.Warn("failed to revoke sessions after password reset", "user_id", userID, "error", err)
	}
	return nil
}

// Profile returns the stored profile of the user.
func (u *authUsecase) Profile(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// ClearExpiredResets drops reset tokens whose expiry has passed.
func (u *authUsecase) ClearExpiredResets(ctx context.Context) (int64, error) {
	return u.users.ClearExpiredResetTokens(ctx, u.now())
}
