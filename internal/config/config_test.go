package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":3000")
	}
	if cfg.JWTTTL != "288h" {
		t.Errorf("JWTTTL = %q, want %q", cfg.JWTTTL, "288h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.DBMaxOpenConns != 10 {
		t.Errorf("DBMaxOpenConns = %d, want 10", cfg.DBMaxOpenConns)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.OTelService != "todo-api" {
		t.Errorf("OTelService = %q, want todo-api", cfg.OTelService)
	}
	if cfg.TelemetryKafkaTopic != "todo-telemetry" {
		t.Errorf("TelemetryKafkaTopic = %q, want todo-telemetry", cfg.TelemetryKafkaTopic)
	}
	if cfg.KafkaGroupID != "todo-telemetry-worker" {
		t.Errorf("KafkaGroupID = %q, want todo-telemetry-worker", cfg.KafkaGroupID)
	}
	if cfg.JWTSigningKey != "" {
		t.Error("JWTSigningKey should default to empty")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_TTL", "1h")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("DB_MAX_OPEN_CONNS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTTTL != "1h" {
		t.Errorf("JWTTTL = %q, want 1h", cfg.JWTTTL)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.DBMaxOpenConns != 25 {
		t.Errorf("DBMaxOpenConns = %d, want 25", cfg.DBMaxOpenConns)
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // Should default to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_NegativePoolSize(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_MAX_OPEN_CONNS", "-1")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should reject negative DB_MAX_OPEN_CONNS")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestRequireSigningKey(t *testing.T) {
	cases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{"missing", "", "must be set"},
		{"too short", "short-secret", "at least 32 bytes"},
		{"ok", strings.Repeat("k", MinSigningKeyLen), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{JWTSigningKey: tc.key}
			err := cfg.RequireSigningKey()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("RequireSigningKey: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("RequireSigningKey error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestTokenTTL_ValidDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ttl := cfg.TokenTTL(); ttl != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want %v", ttl, 30*time.Minute)
	}
}

func TestTokenTTL_Fallback(t *testing.T) {
	for _, v := range []string{"invalid", "0", "-5m"} {
		cfg := &Config{JWTTTL: v}
		if ttl := cfg.TokenTTL(); ttl != 288*time.Hour {
			t.Errorf("TokenTTL(%q) = %v, want %v (default)", v, ttl, 288*time.Hour)
		}
	}
}

func TestServerTimeouts_Defaults(t *testing.T) {
	cfg := &Config{}
	if cfg.ReadTimeout() != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.ReadTimeout())
	}
	if cfg.WriteTimeout() != 15*time.Second {
		t.Errorf("WriteTimeout = %v, want 15s", cfg.WriteTimeout())
	}
	if cfg.GracefulTimeout() != 10*time.Second {
		t.Errorf("GracefulTimeout = %v, want 10s", cfg.GracefulTimeout())
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	cfg := &Config{TelemetryKafkaBrokers: " a:9092, ,b:9092 "}
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Errorf("TelemetryKafkaBrokersList = %v, want [a:9092 b:9092]", got)
	}
	var nilCfg *Config
	if nilCfg.TelemetryKafkaBrokersList() != nil {
		t.Error("nil config should yield nil brokers")
	}
	if (&Config{}).TelemetryKafkaBrokersList() != nil {
		t.Error("empty brokers should yield nil")
	}
}
