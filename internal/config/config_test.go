package config

import (
	"context"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.MinDiscountPercent != 10 {
		t.Errorf("MinDiscountPercent = %d, want 10", cfg.MinDiscountPercent)
	}
	if cfg.DealsTargetSize != 10 {
		t.Errorf("DealsTargetSize = %d, want 10", cfg.DealsTargetSize)
	}
	if cfg.CacheStaleCeiling != 6*time.Hour {
		t.Errorf("CacheStaleCeiling = %v, want 6h", cfg.CacheStaleCeiling)
	}
	if cfg.PriceCheckIntervalHours != 12 {
		t.Errorf("PriceCheckIntervalHours = %d, want 12", cfg.PriceCheckIntervalHours)
	}
	if cfg.DigestTime != "22:30" {
		t.Errorf("DigestTime = %q, want 22:30", cfg.DigestTime)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MIN_DISCOUNT_PERCENT", "25")
	t.Setenv("EPIC_FREE_GAMES_URLS", "https://a.example/feed|https://b.example/feed")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if cfg.MinDiscountPercent != 25 {
		t.Errorf("MinDiscountPercent = %d, want 25", cfg.MinDiscountPercent)
	}
	if len(cfg.EpicFreeGamesURLs) != 2 || cfg.EpicFreeGamesURLs[1] != "https://b.example/feed" {
		t.Errorf("EpicFreeGamesURLs = %v, want two entries", cfg.EpicFreeGamesURLs)
	}
}

func TestLoadRejectsBadDigestTime(t *testing.T) {
	t.Setenv("DIGEST_TIME", "25:00")
	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error for hour 25")
	}
}

func TestDigestCronSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"22:30", "30 22 * * *", false},
		{"0:05", "5 0 * * *", false},
		{" 09:00 ", "0 9 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Config{DigestTime: tt.in}.DigestCronSpec()
		if tt.wantErr {
			if err == nil {
				t.Errorf("DigestCronSpec(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("DigestCronSpec(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DigestCronSpec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
