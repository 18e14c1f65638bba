package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user
	return nil
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	session, ok := m.sessions[refreshToken]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return session, nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func newTestAuthService(repo *mockAuthRepository) *AuthService {
	tokens := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(repo, tokens)
}

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, result.User)
	require.NotNil(t, result.TokenPair)

	assert.NotEqual(t, "Password1", result.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("Password1")))
	assert.Equal(t, "buyer", result.User.Username)
	assert.Equal(t, "USD", result.User.Currency)
	assert.True(t, result.User.IsActive)
	assert.Len(t, repo.sessions, 1)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	assert.Error(t, err)
}

func TestRegister_RejectsWeakPassword(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "short",
	}, nil)
	assert.Error(t, err)
}

func TestRegister_KeepsDisplayCurrency(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "euro@example.com",
		Password: "Password1",
		Currency: "eur",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "EUR", result.User.Currency)
}

func TestLogin_Succeeds(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
}

func TestLogin_RejectsWrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "buyer@example.com",
		Password: "Password2",
	}, nil)
	assert.Error(t, err)
}

func TestLogin_RejectsBlockedAccount(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	registered.User.IsActive = false

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	assert.Error(t, err)
}

func TestRefresh_RotatesSession(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	oldToken := registered.TokenPair.RefreshToken
	pair, err := svc.Refresh(context.Background(), oldToken, nil)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, pair.RefreshToken)

	// Старый токен отозван
	_, err = svc.Refresh(context.Background(), oldToken, nil)
	assert.Error(t, err)
}

func TestLogout_RevokesSession(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), registered.TokenPair.RefreshToken))
	assert.Empty(t, repo.sessions)
}

func TestUpdateProfile_ChangesCurrency(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "buyer@example.com",
		Password: "Password1",
	}, nil)
	require.NoError(t, err)

	code := "EUR"
	user, err := svc.UpdateProfile(context.Background(), registered.User.ID, UpdateProfileInput{Currency: &code})
	require.NoError(t, err)
	assert.Equal(t, "EUR", user.Currency)
}
