package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/mail"
)

func setRequired(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret-0123456789")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret-0123456789")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/otpauth")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, MailDriverSMTP, cfg.Mail.Driver)
	assert.Equal(t, "465", cfg.Mail.SMTPPort)
	assert.Equal(t, []string{"http://localhost:4200", "http://localhost:4201", "http://localhost:4202"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "/api", cfg.HTTP.CookiePath)
	assert.True(t, cfg.HTTP.CookieSecure)
	assert.Equal(t, 100, cfg.HTTP.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.HTTP.RateWindow)
	assert.Equal(t, int64(1<<20), cfg.HTTP.BodyLimit)
	assert.False(t, cfg.Development())

	proxies, err := cfg.HTTP.Proxies()
	require.NoError(t, err)
	assert.Empty(t, proxies)
}

func TestTrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg, err := Load()
	require.NoError(t, err)

	proxies, err := cfg.HTTP.Proxies()
	require.NoError(t, err)
	require.Len(t, proxies, 2)
	assert.Equal(t, "10.0.0.0/8", proxies[0].String())
	assert.Equal(t, "192.0.2.10/32", proxies[1].String())
}

func TestLoadFromDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "ACCESS_TOKEN_SECRET=file-access-secret-0123\n" +
		"REFRESH_TOKEN_SECRET=file-refresh-secret-0123\n" +
		"DATABASE_URL=postgres://db/otpauth\n" +
		"APP_ENV=development\n" +
		"MAIL_DRIVER=log\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for _, k := range []string{"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET", "DATABASE_URL", "APP_ENV", "MAIL_DRIVER"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Development())
	assert.Equal(t, MailDriverLog, cfg.Mail.Driver)
	assert.Equal(t, "postgres://db/otpauth", cfg.Postgres.URL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_SECRET", "")
		require.NoError(t, os.Unsetenv("ACCESS_TOKEN_SECRET"))
		t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret-0123456789")
		t.Setenv("DATABASE_URL", "postgres://localhost/otpauth")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("identical secrets", func(t *testing.T) {
		setRequired(t)
		t.Setenv("REFRESH_TOKEN_SECRET", "access-secret-0123456789")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed trusted proxy", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TRUSTED_PROXIES", "10.0.0.0/99")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unknown mail driver", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MAIL_DRIVER", "pigeon")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestEngineConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_OPERATION_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)

	ec := cfg.Engine()
	require.NoError(t, ec.Validate())
	assert.Equal(t, []byte("access-secret-0123456789"), ec.JWT.AccessSecret)
	assert.Equal(t, 750*time.Millisecond, ec.Store.OperationTimeout)
	assert.Equal(t, 300*time.Second, ec.OTP.CodeTTL)
}

func TestMailSenderSelection(t *testing.T) {
	setRequired(t)
	t.Setenv("MAIL_DRIVER", "log")

	cfg, err := Load()
	require.NoError(t, err)

	s, err := cfg.MailSender(zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &mail.LogSender{}, s)

	cfg.Mail.Driver = MailDriverPostmark
	_, err = cfg.MailSender(zap.NewNop())
	assert.ErrorIs(t, err, mail.ErrInvalidConfig, "postmark needs a server token")
}

func TestLogger(t *testing.T) {
	l, err := Config{LogLevel: "warn"}.Logger()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l, err = Config{LogDev: true}.Logger()
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}
