package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv sets an environment variable for the duration of the test
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if existed {
			os.Setenv(key, original)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "GO_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.GoEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "aud", cfg.StripeCurrency)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "planterbox-api", cfg.JWTIssuer)
	assert.Equal(t, "planterbox-storefront", cfg.JWTAudience)
	assert.Same(t, cfg, GetConfig(), "Load should register the loaded config")
}

func TestLoadReadsEnvironment(t *testing.T) {
	setEnv(t, "GO_ENV", "test")
	setEnv(t, "PORT", "9090")
	setEnv(t, "SMTP_HOST", "smtp.example.com")
	setEnv(t, "SMTP_PORT", "2525")
	setEnv(t, "SMTP_USER", "shop@example.com")
	setEnv(t, "AWS_S3_BUCKET", "planter-attachments")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "shop@example.com", cfg.MailFrom, "MAIL_FROM falls back to SMTP_USER")
	assert.Equal(t, "shop@example.com", cfg.StoreEmail, "STORE_EMAIL falls back to SMTP_USER")
	assert.True(t, cfg.MailEnabled())
	assert.True(t, cfg.StorageEnabled())
}

func TestLoadInvalidSMTPPort(t *testing.T) {
	setEnv(t, "GO_ENV", "test")
	setEnv(t, "SMTP_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "test mode skips validation",
			cfg:     Config{GoEnv: "test"},
			wantErr: false,
		},
		{
			name:    "missing database",
			cfg:     Config{GoEnv: "production", JWTSecret: "secret"},
			wantErr: true,
		},
		{
			name:    "missing jwt secret",
			cfg:     Config{GoEnv: "production", DatabaseURL: "u:p@tcp(db:3306)/shop"},
			wantErr: true,
		},
		{
			name:    "database from parts",
			cfg:     Config{GoEnv: "production", DBHost: "db", DBUser: "u", DBName: "shop", JWTSecret: "secret"},
			wantErr: false,
		},
		{
			name:    "database url",
			cfg:     Config{GoEnv: "development", DatabaseURL: "u:p@tcp(db:3306)/shop", JWTSecret: "secret"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, (&Config{GoEnv: "production"}).IsProduction())
	assert.True(t, (&Config{GoEnv: "test"}).IsTest())
	assert.True(t, (&Config{GoEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{GoEnv: "development"}).IsProduction())
	assert.False(t, (&Config{}).MailEnabled())
	assert.False(t, (&Config{}).StorageEnabled())
}
