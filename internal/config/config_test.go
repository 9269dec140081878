package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
auth:
  jwt_secret: test-secret-test-secret-test-secret!
email:
  smtp:
    host: smtp.example.com
    port: 587
    from: noreply@example.com
notes:
  encryption_key: 0123456789abcdef0123456789abcdef
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Errorf("access token ttl = %v, want 2h", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.VerificationCodeTTL != 10*time.Minute {
		t.Errorf("verification code ttl = %v, want 10m", cfg.Auth.VerificationCodeTTL)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			"missing jwt secret",
			`
email:
  smtp:
    host: smtp.example.com
    port: 587
    from: noreply@example.com
notes:
  encryption_key: 0123456789abcdef0123456789abcdef
`,
		},
		{
			"short jwt secret",
			`
auth:
  jwt_secret: short
email:
  smtp:
    host: smtp.example.com
    port: 587
    from: noreply@example.com
notes:
  encryption_key: 0123456789abcdef0123456789abcdef
`,
		},
		{
			"notes key reuses jwt secret",
			`
auth:
  jwt_secret: test-secret-test-secret-test-secret!
email:
  smtp:
    host: smtp.example.com
    port: 587
    from: noreply@example.com
notes:
  encryption_key: test-secret-test-secret-test-secret!
`,
		},
		{
			"missing smtp host",
			`
auth:
  jwt_secret: test-secret-test-secret-test-secret!
email:
  smtp:
    port: 587
    from: noreply@example.com
notes:
  encryption_key: 0123456789abcdef0123456789abcdef
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Fatal("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GLASSTASK_JWT_SECRET", "override-secret-override-secret-yes!")
	t.Setenv("GLASSTASK_SMTP_PASSWORD", "hunter2")
	t.Setenv("GLASSTASK_NOTES_KEY", "fedcba9876543210fedcba9876543210")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "override-secret-override-secret-yes!" {
		t.Errorf("jwt secret not overridden: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Email.SMTP.Password != "hunter2" {
		t.Errorf("smtp password not overridden: %q", cfg.Email.SMTP.Password)
	}
	if cfg.Notes.EncryptionKey != "fedcba9876543210fedcba9876543210" {
		t.Errorf("notes key not overridden: %q", cfg.Notes.EncryptionKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() succeeded, want error")
	}
}
