package settings

import (
	"os"
	"strings"
)

// Environment holds process-level settings that only ever come from the
// environment. Credentials are deliberately kept out of Config so they are
// never written to the config file or served to the control panel.
type Environment struct {
	Username string
	Password string
	Email    string

	Headless    bool
	CookiesFile string

	ListenAddr string
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

// LoadEnvironment reads the process environment. Call godotenv.Load first if
// a .env file should participate.
func LoadEnvironment() Environment {
	env := Environment{
		Username:    os.Getenv("TWITTER_USERNAME"),
		Password:    os.Getenv("TWITTER_PASSWORD"),
		Email:       os.Getenv("TWITTER_EMAIL"),
		Headless:    boolEnv("HEADLESS_MODE", false),
		CookiesFile: envOr("COOKIES_FILE", "cookies.json"),
		ListenAddr:  envOr("PANEL_ADDR", ":5000"),
		ConfigFile:  envOr("CONFIG_FILE", DefaultConfigFile),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "console"),
	}
	return env
}

// HasCredentials reports whether a username/password login is possible.
func (e Environment) HasCredentials() bool {
	return e.Username != "" && e.Password != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
