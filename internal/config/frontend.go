package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultAPIURL is the guestbook endpoint used by the terminal frontend when
// GUESTBOOK_API_URL is unset. Overridable at build time with
// -ldflags "-X guestbook/internal/config.DefaultAPIURL=...".
var DefaultAPIURL = "http://localhost:8080/api/guestbook"

type FrontendConfig struct {
	APIURL  string          `env:"GUESTBOOK_API_URL"`
	Timeout durationSeconds `env:"GUESTBOOK_API_TIMEOUT" env-default:"10s"`
	// LogFile receives the frontend log; the terminal belongs to the UI.
	LogFile  string `env:"LOG_FILE" env-default:"guestbook-tui.log"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

func LoadFrontend() (FrontendConfig, error) {
	var cfg FrontendConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return FrontendConfig{}, fmt.Errorf("read env: %w", err)
	}
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return FrontendConfig{}, fmt.Errorf("GUESTBOOK_API_URL must be an http(s) URL, got %q", cfg.APIURL)
	}
	return cfg, nil
}
