package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/internal/feature/auth/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
// It simulates database operations during testing.
type mockUserRepository struct {
	CreateFunc                  func(ctx context.Context, user *entity.User) error
	FindByEmailFunc             func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc                func(ctx context.Context, id uint) (*entity.User, error)
	ActivateFunc                func(ctx context.Context, token string) error
	SetResetTokenFunc           func(ctx context.Context, userID uint, token string, expires time.Time) error
	ResetPasswordFunc           func(ctx context.Context, token, hash string, now time.Time) (uint, error)
	ClearExpiredResetTokensFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil // Default: success
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default: return user not found error
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Activate(ctx context.Context, token string) error {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, token)
	}
	return ErrUserNotFound
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	if m.SetResetTokenFunc != nil {
		return m.SetResetTokenFunc(ctx, userID, token, expires)
	}
	return nil
}

func (m *mockUserRepository) ResetPassword(ctx context.Context, token, hash string, now time.Time) (uint, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, hash, now)
	}
	return 0, ErrUserNotFound
}

func (m *mockUserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	if m.ClearExpiredResetTokensFunc != nil {
		return m.ClearExpiredResetTokensFunc(ctx, now)
	}
	return 0, nil
}

// mockNotifier records the emails it was asked to send.
type mockNotifier struct {
	activationErr error
	resetErr      error
	activations   []string
	resets        []string
}

func (m *mockNotifier) SendActivation(ctx context.Context, to, name, link string) error {
	m.activations = append(m.activations, link)
	return m.activationErr
}

func (m *mockNotifier) SendPasswordReset(ctx context.Context, to, link string) error {
	m.resets = append(m.resets, link)
	return m.resetErr
}

// mockSessions is a mock implementation of the Sessions interface.
type mockSessions struct {
	EstablishFunc func(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error)
	revokedUsers  []uint
	revokeErr     error
}

func (m *mockSessions) Establish(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error) {
	if m.EstablishFunc != nil {
		return m.EstablishFunc(ctx, userID, name, email, client)
	}
	return &entity.Session{ID: "session-id", UserID: userID, Name: name, Email: email}, nil
}

func (m *mockSessions) RevokeAll(ctx context.Context, userID uint) error {
	m.revokedUsers = append(m.revokedUsers, userID)
	return m.revokeErr
}

func newTestUsecase(repo UserRepository, n Notifier, s Sessions) *authUsecase {
	return NewAuthUsecase(repo, n, s, Config{
		BcryptCost:    bcrypt.MinCost,
		ActivationURL: "http://localhost:8080/api/auth/verify",
		ResetURL:      "http://localhost:8080/auth.html",
	})
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:     "test@example.com",
		Password:  "password123",
		FirstName: "Mario",
		LastName:  "Rossi",
		Phone:     "3331234567",
		Gender:    "M",
	}
}

func TestAuthUsecase_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		var created *entity.User
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				created = user
				return nil
			},
		}
		notifier := &mockNotifier{}
		uc := newTestUsecase(repo, notifier, &mockSessions{})

		err := uc.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.False(t, created.IsActive, "new users must be inactive")
		assert.NotEqual(t, "password123", created.Password, "password is not hashed")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
		require.NotNil(t, created.ActivationToken)
		assert.Len(t, *created.ActivationToken, 64)

		require.Len(t, notifier.activations, 1)
		link, err := url.Parse(notifier.activations[0])
		require.NoError(t, err)
		assert.Equal(t, *created.ActivationToken, link.Query().Get("token"))
	})

	t.Run("existing email yields conflict regardless of other fields", func(t *testing.T) {
		createCalled := false
		repo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: 1, Email: email, FirstName: "Someone Else"}, nil
			},
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				createCalled = true
				return nil
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{})

		in := validRegisterInput()
		in.FirstName = "Different"
		in.Phone = "000"
		err := uc.Register(context.Background(), in)

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		assert.False(t, createCalled)
	})

	t.Run("unique constraint race yields conflict", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return ErrEmailAlreadyExists
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{})

		err := uc.Register(context.Background(), validRegisterInput())
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})

	t.Run("email failure is distinguishable and keeps the user", func(t *testing.T) {
		created := false
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				created = true
				return nil
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{activationErr: errors.New("smtp down")}, &mockSessions{})

		err := uc.Register(context.Background(), validRegisterInput())
		assert.ErrorIs(t, err, ErrActivationEmailFailed)
		assert.True(t, created)
	})

	t.Run("short password", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})

		in := validRegisterInput()
		in.Password = "short"
		err := uc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				t.Fatal("user must not be created")
				return nil
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{})

		in := validRegisterInput()
		in.Password = strings.Repeat("a", maxPasswordBytes+8)
		err := uc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("password at the bcrypt limit", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})

		in := validRegisterInput()
		in.Password = strings.Repeat("a", maxPasswordBytes)
		assert.NoError(t, uc.Register(context.Background(), in))
	})

	t.Run("missing email", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})

		in := validRegisterInput()
		in.Email = " "
		err := uc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("repository create failure", func(t *testing.T) {
		expectedErr := errors.New("database error")
		repo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return expectedErr
			},
		}
		notifier := &mockNotifier{}
		uc := newTestUsecase(repo, notifier, &mockSessions{})

		err := uc.Register(context.Background(), validRegisterInput())
		assert.ErrorIs(t, err, expectedErr)
		assert.Empty(t, notifier.activations)
	})
}

func TestAuthUsecase_VerifyActivation(t *testing.T) {
	t.Run("token is single-use", func(t *testing.T) {
		consumed := false
		repo := &mockUserRepository{
			ActivateFunc: func(ctx context.Context, token string) error {
				if token != "tok" || consumed {
					return ErrUserNotFound
				}
				consumed = true
				return nil
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{})

		assert.NoError(t, uc.VerifyActivation(context.Background(), "tok"))
		assert.ErrorIs(t, uc.VerifyActivation(context.Background(), "tok"), ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})
		assert.ErrorIs(t, uc.VerifyActivation(context.Background(), ""), ErrInvalidToken)
	})

	t.Run("storage failure is not reported as invalid token", func(t *testing.T) {
		repo := &mockUserRepository{
			ActivateFunc: func(ctx context.Context, token string) error { return errors.New("db down") },
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{})

		err := uc.VerifyActivation(context.Background(), "tok")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	password := "password123"
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	activeUser := &entity.User{
		ID:        1,
		Email:     "test@example.com",
		Password:  string(hashedPassword),
		FirstName: "Mario",
		IsActive:  true,
	}
	inactiveUser := *activeUser
	inactiveUser.IsActive = false

	findBy := func(u *entity.User) func(ctx context.Context, email string) (*entity.User, error) {
		return func(ctx context.Context, email string) (*entity.User, error) {
			if email == u.Email {
				return u, nil
			}
			return nil, ErrUserNotFound
		}
	}

	t.Run("successful login establishes a session", func(t *testing.T) {
		sessions := &mockSessions{
			EstablishFunc: func(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error) {
				assert.Equal(t, uint(1), userID)
				assert.Equal(t, "Mario", name)
				assert.Equal(t, "test@example.com", email)
				assert.Equal(t, "127.0.0.1", client.IPAddress)
				return &entity.Session{ID: "sid", UserID: userID}, nil
			},
		}
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(activeUser)}, &mockNotifier{}, sessions)

		session, err := uc.Login(context.Background(), "test@example.com", password, ClientInfo{IPAddress: "127.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "sid", session.ID)
	})

	t.Run("user not found", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(activeUser)}, &mockNotifier{}, &mockSessions{})

		_, err := uc.Login(context.Background(), "wrong@example.com", password, ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("incorrect password", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(activeUser)}, &mockNotifier{}, &mockSessions{})

		_, err := uc.Login(context.Background(), "test@example.com", "wrong-password", ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("email match is case-sensitive", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(activeUser)}, &mockNotifier{}, &mockSessions{})

		_, err := uc.Login(context.Background(), "TEST@example.com", password, ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account with correct password is forbidden", func(t *testing.T) {
		establishCalled := false
		sessions := &mockSessions{
			EstablishFunc: func(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error) {
				establishCalled = true
				return nil, nil
			},
		}
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(&inactiveUser)}, &mockNotifier{}, sessions)

		session, err := uc.Login(context.Background(), "test@example.com", password, ClientInfo{})
		assert.ErrorIs(t, err, ErrAccountInactive)
		assert.Nil(t, session)
		assert.False(t, establishCalled)
	})

	t.Run("inactive account with wrong password is unauthorized", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(&inactiveUser)}, &mockNotifier{}, &mockSessions{})

		_, err := uc.Login(context.Background(), "test@example.com", "wrong-password", ClientInfo{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("session failure", func(t *testing.T) {
		sessions := &mockSessions{
			EstablishFunc: func(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error) {
				return nil, errors.New("redis down")
			},
		}
		uc := newTestUsecase(&mockUserRepository{FindByEmailFunc: findBy(activeUser)}, &mockNotifier{}, sessions)

		_, err := uc.Login(context.Background(), "test@example.com", password, ClientInfo{})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthUsecase_RequestPasswordReset(t *testing.T) {
	fixedNow := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("existing email stores token expiring in one hour and sends email", func(t *testing.T) {
		var storedToken string
		var storedExpiry time.Time
		repo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: 3, Email: email}, nil
			},
			SetResetTokenFunc: func(ctx context.Context, userID uint, token string, expires time.Time) error {
				assert.Equal(t, uint(3), userID)
				storedToken = token
				storedExpiry = expires
				return nil
			},
		}
		notifier := &mockNotifier{}
		uc := newTestUsecase(repo, notifier, &mockSessions{})
		uc.now = func() time.Time { return fixedNow }

		require.NoError(t, uc.RequestPasswordReset(context.Background(), "user@example.com"))

		assert.Len(t, storedToken, 64)
		assert.Equal(t, fixedNow.Add(time.Hour), storedExpiry)
		require.Len(t, notifier.resets, 1)
		assert.True(t, strings.Contains(notifier.resets[0], "reset_token="+storedToken))
	})

	t.Run("unknown email does nothing", func(t *testing.T) {
		notifier := &mockNotifier{}
		uc := newTestUsecase(&mockUserRepository{}, notifier, &mockSessions{})

		assert.NoError(t, uc.RequestPasswordReset(context.Background(), "nobody@example.com"))
		assert.Empty(t, notifier.resets)
	})

	t.Run("email failure is reported for logging", func(t *testing.T) {
		repo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: 3, Email: email}, nil
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{resetErr: errors.New("smtp down")}, &mockSessions{})

		assert.ErrorIs(t, uc.RequestPasswordReset(context.Background(), "user@example.com"), ErrResetEmailFailed)
	})
}

func TestAuthUsecase_ResetPassword(t *testing.T) {
	t.Run("valid token replaces password and revokes sessions", func(t *testing.T) {
		var storedHash string
		repo := &mockUserRepository{
			ResetPasswordFunc: func(ctx context.Context, token, hash string, now time.Time) (uint, error) {
				assert.Equal(t, "reset-token", token)
				storedHash = hash
				return 9, nil
			},
		}
		sessions := &mockSessions{}
		uc := newTestUsecase(repo, &mockNotifier{}, sessions)

		require.NoError(t, uc.ResetPassword(context.Background(), "reset-token", "new-password"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("new-password")))
		assert.Equal(t, []uint{9}, sessions.revokedUsers)
	})

	t.Run("unknown or expired token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})

		err := uc.ResetPassword(context.Background(), "expired", "new-password")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})
		assert.ErrorIs(t, uc.ResetPassword(context.Background(), "", "new-password"), ErrInvalidToken)
	})

	t.Run("weak password", func(t *testing.T) {
		uc := newTestUsecase(&mockUserRepository{}, &mockNotifier{}, &mockSessions{})
		assert.ErrorIs(t, uc.ResetPassword(context.Background(), "tok", "short"), ErrValidation)
	})

	t.Run("overlong password", func(t *testing.T) {
		repo := &mockUserRepository{
			ResetPasswordFunc: func(ctx context.Context, token, hash string, now time.Time) (uint, error) {
				t.Fatal("password must not be stored")
				return 0, nil
			},
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{})
		assert.ErrorIs(t, uc.ResetPassword(context.Background(), "tok", strings.Repeat("p", 80)), ErrValidation)
	})

	t.Run("session revocation failure does not fail the reset", func(t *testing.T) {
		repo := &mockUserRepository{
			ResetPasswordFunc: func(ctx context.Context, token, hash string, now time.Time) (uint, error) { return 1, nil },
		}
		uc := newTestUsecase(repo, &mockNotifier{}, &mockSessions{revokeErr: errors.New("redis down")})

		assert.NoError(t, uc.ResetPassword(context.Background(), "tok", "new-password"))
	})
}

func TestWithQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://shop.local/verify?token=abc", withQuery("http://shop.local/verify", "token", "abc"))
	assert.Equal(t, "http://shop.local/auth.html?lang=it&reset_token=abc", withQuery("http://shop.local/auth.html?lang=it", "reset_token", "abc"))
}
