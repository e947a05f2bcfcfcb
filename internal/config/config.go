package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Store selection: "sqlite" or "memory" (fixture data, no persistence).
	Store  string `env:"STORE" envDefault:"sqlite"`
	DBPath string `env:"DB_PATH" envDefault:"data/geoquest.db"`

	// Optional leaderboard cache.
	RedisURL       string        `env:"REDIS_URL"`
	LeaderboardTTL time.Duration `env:"LEADERBOARD_TTL" envDefault:"30s"`

	// Game-wide final code required to finish the hunt. Also authorizes
	// the organizer QR endpoint.
	ExtractionKey string `env:"EXTRACTION_KEY" envDefault:"2026"`

	// Geofence buffers in meters.
	GeoToleranceMeters     float64 `env:"GEO_TOLERANCE_M" envDefault:"300"`
	GeoDefaultRadiusMeters float64 `env:"GEO_DEFAULT_RADIUS_M" envDefault:"500"`

	// External object-verification service. Empty disables photo checks.
	VerifyBaseURL string `env:"VERIFY_BASE_URL"`

	// Outbound mail. Empty host disables sending.
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM" envDefault:"GeoQuest Command <noreply@geoquest.local>"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Store != "sqlite" && cfg.Store != "memory" {
		return nil, fmt.Errorf("unknown STORE %q (want sqlite or memory)", cfg.Store)
	}
	return &cfg, nil
}
