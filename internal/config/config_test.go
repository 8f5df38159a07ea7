package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("AccessTokenExpiry: got %v, want %v", cfg.Auth.AccessTokenExpiry, 15*time.Minute)
	}
	if cfg.Auth.RefreshTokenExpiry != 7*24*time.Hour {
		t.Errorf("RefreshTokenExpiry: got %v, want %v", cfg.Auth.RefreshTokenExpiry, 7*24*time.Hour)
	}
	if cfg.RateLimit.LoginMaxAttempts != 10 {
		t.Errorf("LoginMaxAttempts: got %d, want 10", cfg.RateLimit.LoginMaxAttempts)
	}
	if cfg.RateLimit.LoginWindow != 15*time.Minute {
		t.Errorf("LoginWindow: got %v, want %v", cfg.RateLimit.LoginWindow, 15*time.Minute)
	}
	if cfg.Server.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoad_DerivedRefreshSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.RefreshSecret == cfg.Auth.AccessSecret {
		t.Error("refresh secret must differ from access secret")
	}
	if cfg.Auth.RefreshSecret != cfg.Auth.AccessSecret+"-refresh" {
		t.Errorf("refresh secret not derived as expected: %q", cfg.Auth.RefreshSecret)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	os.Setenv("JWT_SECRET", "password")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error for weak JWT secret")
	}
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "only-20-chars-secret")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("expected error for short secret in production")
	}
}

func TestLoad_CustomDurations(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ACCESS_TOKEN_EXPIRY", "5m")
	os.Setenv("REFRESH_TOKEN_EXPIRY", "24h")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.AccessTokenExpiry != 5*time.Minute {
		t.Errorf("AccessTokenExpiry: got %v, want 5m", cfg.Auth.AccessTokenExpiry)
	}
	if cfg.Auth.RefreshTokenExpiry != 24*time.Hour {
		t.Errorf("RefreshTokenExpiry: got %v, want 24h", cfg.Auth.RefreshTokenExpiry)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ACCESS_TOKEN_EXPIRY", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("AccessTokenExpiry with invalid value: got %v, want 15m", cfg.Auth.AccessTokenExpiry)
	}
}
