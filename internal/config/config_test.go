package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_USER", "crm")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "septic")
	t.Setenv("API_PREFIX", "/v1/")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CRM_URL", "https://crm.example/")
	t.Setenv("JWT_SECRET", "s1")
	t.Setenv("JWT_REFRESH_SECRET", "s2")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("REMINDER_LEAD_TIME", "2h")

	cfg := Load()
	if cfg.APIPrefix != "/v1" || cfg.CRMURL != "https://crm.example" {
		t.Errorf("prefix = %q crm url = %q", cfg.APIPrefix, cfg.CRMURL)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.DBPort != "3306" || cfg.Port != "3001" || cfg.BcryptCost != 10 {
		t.Errorf("defaults: port %s db port %s cost %d", cfg.Port, cfg.DBPort, cfg.BcryptCost)
	}
	if cfg.InsecureSecrets() {
		t.Error("explicit secrets reported as insecure")
	}
	if cfg.SMTP.Host != "" || cfg.Company.Name != "Western Mass Septic" {
		t.Errorf("smtp = %+v company = %+v", cfg.SMTP, cfg.Company)
	}
	if cfg.Reminder.Interval != 15*time.Minute || cfg.Reminder.Lead != 2*time.Hour {
		t.Errorf("reminder = %+v", cfg.Reminder)
	}
}

func TestInsecureSecrets(t *testing.T) {
	cfg := Config{AccessSecret: "x", RefreshSecret: DefaultRefreshSecret}
	if !cfg.InsecureSecrets() {
		t.Error("fallback refresh secret not detected")
	}
}

func TestLoadPipelineConfig(t *testing.T) {
	cfg := LoadPipelineConfig()
	if cfg.Stages != DefaultPipelineStages || cfg.Strict {
		t.Errorf("defaults = %+v", cfg)
	}

	t.Setenv("PIPELINE_STAGES", "new:New,won:Won")
	t.Setenv("PIPELINE_STRICT_STAGES", "yes")
	cfg = LoadPipelineConfig()
	if cfg.Stages != "new:New,won:Won" || !cfg.Strict {
		t.Errorf("overrides = %+v", cfg)
	}
}

func TestRateLimitNormalized(t *testing.T) {
	got := RateLimitConfig{Capacity: 0, RefillTokens: -2, RefillInterval: 0, TTL: time.Second}.normalized()
	if got.Capacity != 1 || got.RefillTokens != 1 || got.RefillInterval != time.Second {
		t.Errorf("normalized = %+v", got)
	}
	if got.TTL != 5*time.Second {
		t.Errorf("ttl = %v, want five refill intervals", got.TTL)
	}

	t.Setenv("RATE_LIMIT_CAPACITY", "not-a-number")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 10 || cfg.RefillInterval != 2*time.Second || cfg.TTL != 10*time.Minute {
		t.Errorf("loaded = %+v", cfg)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_TTL", "bogus")
	cfg := LoadCacheConfig()
	if cfg.TTL != 15*time.Second || !cfg.Enabled || cfg.Prefix != "crm:cache" || cfg.MaxBodyBytes != 262144 {
		t.Errorf("cache = %+v", cfg)
	}

	t.Setenv("CACHE_ENABLED", "off")
	t.Setenv("CACHE_TTL", "1m")
	cfg = LoadCacheConfig()
	if cfg.Enabled || cfg.TTL != time.Minute {
		t.Errorf("cache = %+v, want disabled with 1m TTL", cfg)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	log, err := NewLogger("prod", "chatty")
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(-1) {
		t.Error("debug enabled for unknown level")
	}
	if !log.Core().Enabled(0) {
		t.Error("info disabled")
	}
}
