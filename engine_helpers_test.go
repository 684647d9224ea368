package otpauth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-for-tests-0123456789"
	testRefreshSecret = "refresh-secret-for-tests-9876543210"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte(testAccessSecret)
	cfg.JWT.RefreshSecret = []byte(testRefreshSecret)
	cfg.Password.BcryptCost = 4
	cfg.Delivery.RatePerSecond = 0
	return cfg
}

type mockUserStore struct {
	mu      sync.Mutex
	byID    map[string]User
	nextID  int
	updates int
	failErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byID: map[string]User{}}
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return User{}, m.failErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *mockUserStore) FindByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return User{}, m.failErr
	}
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserStore) Create(_ context.Context, nu NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == nu.Email {
			return User{}, ErrUserExists
		}
	}
	m.nextID++
	now := time.Now()
	u := User{
		ID:           "u" + strconv.Itoa(m.nextID),
		Name:         nu.Name,
		Email:        nu.Email,
		Role:         nu.Role,
		PasswordHash: nu.PasswordHash,
		IsVerified:   nu.IsVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	m.byID[id] = u
	m.updates++
	return nil
}

func (m *mockUserStore) get(id string) User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

type captureSender struct {
	mu   sync.Mutex
	sent []OTPMessage
}

func (c *captureSender) SendOTP(_ context.Context, msg OTPMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) messages() []OTPMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]OTPMessage(nil), c.sent...)
}

type testEnv struct {
	engine *Engine
	mr     *miniredis.Miniredis
	users  *mockUserStore
	sender *captureSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	users := newMockUserStore()
	sender := &captureSender{}

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(users).
		WithOTPSender(sender).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, mr: mr, users: users, sender: sender}
}

// code reads the live OTP for email straight from the store.
func (env *testEnv) code(t *testing.T, email string) string {
	t.Helper()
	code, err := env.mr.Get("otp:" + email)
	require.NoError(t, err, "no live otp for %s", email)
	return code
}

// passCooldown expires the resend cooldown without touching longer TTLs
// beyond the same offset.
func (env *testEnv) passCooldown() {
	env.mr.FastForward(61 * time.Second)
}

func (env *testEnv) seedUser(t *testing.T, name, email, plain string) User {
	t.Helper()
	hash, err := env.engine.passwordHash.Hash(plain)
	require.NoError(t, err)
	u, err := env.users.Create(context.Background(), NewUser{
		Name:         name,
		Email:        email,
		Role:         "user",
		PasswordHash: hash,
		IsVerified:   true,
	})
	require.NoError(t, err)
	return u
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "message: %s", e.Message)
	return e
}
