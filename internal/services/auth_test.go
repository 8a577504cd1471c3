package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listsync/internal/domain"
)

type mockUserRepository struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	nextID  int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	cp := *u
	m.byEmail[u.Email] = &cp
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

// plainHasher "hashes" by concatenation so tests can assert without bcrypt cost.
type plainHasher struct{}

func (plainHasher) GenerateSalt() (string, error) { return "salt", nil }

func (plainHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (plainHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type staticTokenIssuer struct {
	lastUserID string
	err        error
}

func (s *staticTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	s.lastUserID = userID
	if s.err != nil {
		return "", s.err
	}
	return "token-" + userID, nil
}

type recordingEmailService struct {
	sent []string
	err  error
}

func (r *recordingEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	r.sent = append(r.sent, data.Email)
	return r.err
}

func newTestAuthService(repo *mockUserRepository, emails *recordingEmailService) domain.AuthService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var emailSvc domain.EmailService
	if emails != nil {
		emailSvc = emails
	}
	return NewAuthService(repo, plainHasher{}, &staticTokenIssuer{}, time.Hour, emailSvc, logger)
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepository()
	emails := &recordingEmailService{}
	svc := newTestAuthService(repo, emails)

	user, err := svc.SignUp(ctx, "  Ada@Example.COM ", "hunter2hunter2", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "salt:hunter2hunter2", user.PasswordHash)
	assert.Equal(t, []string{"ada@example.com"}, emails.sent)
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newMockUserRepository(), nil)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "invalid email", email: "not-an-email", password: "hunter2hunter2"},
		{name: "short password", email: "ada@example.com", password: "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password, "Ada")
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newMockUserRepository(), nil)

	_, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada Twice")
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthService_SignUp_WelcomeEmailFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	emails := &recordingEmailService{err: errors.New("ses down")}
	svc := newTestAuthService(newMockUserRepository(), emails)

	user, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada")
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepository()
	svc := newTestAuthService(repo, nil)

	created, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "Ada@Example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "token-"+created.ID, token)
	assert.Equal(t, created.ID, user.ID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepository()
	svc := newTestAuthService(repo, nil)

	_, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ada@example.com", "wrong-password")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepository()
	svc := newTestAuthService(repo, nil)

	created, err := svc.SignUp(ctx, "ada@example.com", "hunter2hunter2", "Ada")
	require.NoError(t, err)

	user, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
