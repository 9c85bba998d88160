package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != 8080 || cfg.HomeOffsetMinutes != 330 || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoadEnvThenFlags(t *testing.T) {
	t.Setenv("RESULTBOARD_API_PORT", "9000")
	t.Setenv("RESULTBOARD_STORAGE_PATH", "/tmp/env.db")
	t.Setenv("RESULTBOARD_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load([]string{"-storage-path", "/tmp/flag.db"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != 9000 {
		t.Errorf("port = %d, want env value", cfg.APIPort)
	}
	if cfg.StoragePath != "/tmp/flag.db" {
		t.Errorf("storage path = %s, want flag value", cfg.StoragePath)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.Addr() != "localhost:9000" {
		t.Errorf("addr = %s", cfg.Addr())
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("RESULTBOARD_API_PORT", "not-a-number")
	if _, err := Load(nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := Config{APIPort: 8080, StoragePath: "x.db", HomeOffsetMinutes: 330}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]Config{
		"pid lock without pid": {APIPort: 8080, StoragePath: "x.db", PIDLock: true},
		"short secret":         {APIPort: 8080, StoragePath: "x.db", JWTSecret: "short"},
		"bad port":             {APIPort: 0, StoragePath: "x.db"},
		"no storage":           {APIPort: 8080},
		"offset":               {APIPort: 8080, StoragePath: "x.db", HomeOffsetMinutes: 2000},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
