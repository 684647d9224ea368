package otpauth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginIssuesSessionPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "Alice", "alice@example.com", "secret123")

	res, err := env.engine.Login(ctx, " alice@example.com ", "secret123")
	require.NoError(t, err)

	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Session.AccessToken)
	assert.NotEmpty(t, res.Session.RefreshToken)
	assert.NotEqual(t, res.Session.AccessToken, res.Session.RefreshToken)
	assert.Equal(t, env.engine.AccessTTL(), res.Session.AccessTTL)
	assert.Equal(t, env.engine.RefreshTTL(), res.Session.RefreshTTL)

	authed, err := env.engine.Authenticate(ctx, res.Session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = env.engine.Authenticate(ctx, res.Session.RefreshToken)
	requireKind(t, err, KindUnauthenticated)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "Alice", "alice@example.com", "secret123")

	_, wrongPassword := env.engine.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := env.engine.Login(ctx, "ghost@example.com", "secret123")

	a := requireKind(t, wrongPassword, KindInvalidCredentials)
	b := requireKind(t, unknownEmail, KindInvalidCredentials)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, msgInvalidCreds, a.Message)
	assert.Equal(t, uint64(2), env.engine.MetricsSnapshot().Counters[MetricLoginFailure])
}

func TestLoginRehashesLowCostPassword(t *testing.T) {
	_, rdb := newTestRedis(t)
	users := newMockUserStore()
	cfg := testConfig()
	cfg.Password.BcryptCost = bcrypt.MinCost + 1

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithOTPSender(&captureSender{}).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	weak, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := users.Create(context.Background(), NewUser{
		Name: "Alice", Email: "alice@example.com", Role: "user",
		PasswordHash: string(weak), IsVerified: true,
	})
	require.NoError(t, err)

	_, err = engine.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, 1, users.updates)

	cost, err := bcrypt.Cost([]byte(users.get(user.ID).PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	_, err = engine.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, 1, users.updates, "current-cost hash is left alone")
}

func TestLoginRequiresCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Login(context.Background(), "", "secret123")
	e := requireKind(t, err, KindValidation)
	assert.Equal(t, msgCredsRequired, e.Message)
}

func TestRefreshAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "Alice", "alice@example.com", "secret123")

	res, err := env.engine.Login(ctx, user.Email, "secret123")
	require.NoError(t, err)

	access, got, err := env.engine.RefreshAccess(ctx, res.Session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	authed, err := env.engine.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, _, err = env.engine.RefreshAccess(ctx, "")
	e := requireKind(t, err, KindMissingToken)
	assert.Equal(t, msgRefreshMissing, e.Message)

	_, _, err = env.engine.RefreshAccess(ctx, res.Session.AccessToken)
	e = requireKind(t, err, KindInvalidToken)
	assert.Equal(t, msgRefreshInvalid, e.Message)
}

func TestRefreshAccessDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "Alice", "alice@example.com", "secret123")

	res, err := env.engine.Login(ctx, user.Email, "secret123")
	require.NoError(t, err)

	env.users.mu.Lock()
	delete(env.users.byID, user.ID)
	env.users.mu.Unlock()

	_, _, err = env.engine.RefreshAccess(ctx, res.Session.RefreshToken)
	requireKind(t, err, KindNotFound)

	_, err = env.engine.Authenticate(ctx, res.Session.AccessToken)
	e := requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, msgAccountMissing, e.Message)
}

func TestAuthenticateMissingAndGarbageTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.engine.Authenticate(ctx, "")
	e := requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, msgTokenMissing, e.Message)

	_, err = env.engine.Authenticate(ctx, "not.a.jwt")
	e = requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, msgTokenInvalid, e.Message)
}

func TestBuilderRequiresDependencies(t *testing.T) {
	_, rdb := newTestRedis(t)

	_, err := New().WithConfig(testConfig()).WithUserStore(newMockUserStore()).WithOTPSender(&captureSender{}).Build()
	assert.Error(t, err, "store is required")

	_, err = New().WithConfig(testConfig()).WithRedis(rdb).WithOTPSender(&captureSender{}).Build()
	assert.Error(t, err, "user store is required")

	_, err = New().WithConfig(testConfig()).WithRedis(rdb).WithUserStore(newMockUserStore()).Build()
	assert.Error(t, err, "sender is required")

	_, err = New().WithRedis(rdb).WithUserStore(newMockUserStore()).WithOTPSender(&captureSender{}).Build()
	assert.Error(t, err, "secrets are required")

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithUserStore(newMockUserStore()).WithOTPSender(&captureSender{})
	engine, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	_, err = b.Build()
	assert.Error(t, err, "builder is single-use")
}

func TestNilEngine(t *testing.T) {
	var e *Engine
	assert.True(t, errors.Is(e.Register(context.Background(), RegisterRequest{}), ErrEngineNotReady))
	_, err := e.Login(context.Background(), "a", "b")
	assert.True(t, errors.Is(err, ErrEngineNotReady))
}
