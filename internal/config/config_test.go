package config

import (
	"net/url"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port=%q, expected 8080", cfg.Port)
	}
	if cfg.StorageDriver != "postgres" {
		t.Errorf("StorageDriver=%q, expected postgres", cfg.StorageDriver)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout=%v, expected 5s", cfg.StoreTimeout)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Errorf("Location=%s, expected America/New_York", cfg.Location)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins=%v, expected [*]", cfg.CORSOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ORIGINS", "https://app.trademind.io, https://admin.trademind.io")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageDriver != "memory" {
		t.Errorf("StorageDriver=%q, expected memory", cfg.StorageDriver)
	}
	if cfg.StoreTimeout != 750*time.Millisecond {
		t.Errorf("StoreTimeout=%v, expected 750ms", cfg.StoreTimeout)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location=%v, expected UTC", cfg.Location)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.trademind.io" {
		t.Errorf("CORSOrigins=%v", cfg.CORSOrigins)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("DBMaxConns=%d, expected 25", cfg.DBMaxConns)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{}},
		{name: "bad timeout", env: map[string]string{"JWT_SECRET": "s", "STORE_TIMEOUT": "soon"}},
		{name: "bad timezone", env: map[string]string{"JWT_SECRET": "s", "TIMEZONE": "Mars/Olympus"}},
		{name: "bad driver", env: map[string]string{"JWT_SECRET": "s", "STORAGE_DRIVER": "mongo"}},
		{name: "zero burst", env: map[string]string{"JWT_SECRET": "s", "TRADE_RATE_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "tm", DBSSLMode: "require"}
	want := "postgres://u:p@db:5433/tm?sslmode=require"
	if got := cfg.PostgresURL(); got != want {
		t.Fatalf("PostgresURL=%q, expected %q", got, want)
	}
}

func TestPostgresURLEscapesCredentials(t *testing.T) {
	cfg := &Config{DBUser: "trade@mind", DBPassword: "p@ss/w:rd?#", DBHost: "db", DBPort: "5432", DBName: "tm", DBSSLMode: "disable"}

	parsed, err := url.Parse(cfg.PostgresURL())
	if err != nil {
		t.Fatalf("PostgresURL is not a valid URL: %v", err)
	}
	if parsed.Host != "db:5432" || parsed.Path != "/tm" {
		t.Fatalf("host=%q path=%q", parsed.Host, parsed.Path)
	}
	if got := parsed.User.Username(); got != cfg.DBUser {
		t.Fatalf("user=%q, expected %q", got, cfg.DBUser)
	}
	if got, _ := parsed.User.Password(); got != cfg.DBPassword {
		t.Fatalf("password=%q, expected %q", got, cfg.DBPassword)
	}
	if got := parsed.Query().Get("sslmode"); got != "disable" {
		t.Fatalf("sslmode=%q", got)
	}
}
