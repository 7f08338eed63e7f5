package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultDotEnvPath = ".env"

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv       string `env:"APP_ENV" envDefault:"dev"`
	DBPath       string `env:"DB_PATH" envDefault:"./threedcost.db"`
	Port         string `env:"PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON      bool   `env:"LOG_JSON" envDefault:"false"`
	APIToken     string `env:"API_TOKEN"`
	SeedProfiles bool   `env:"SEED_PROFILES" envDefault:"false"`
}

// Load reads an optional dotenv file (".env" unless paths are given) and then
// the environment. Values already set in the environment win over the file.
func Load(paths ...string) (Config, error) {
	const op = "config.Load"

	if len(paths) == 0 {
		paths = []string{defaultDotEnvPath}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%s: load %s: %w", op, path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

// IsDev reports whether the app runs in the local development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// Warnings lists configuration problems that do not prevent startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.APIToken == "" {
		warnings = append(warnings, "API_TOKEN is not set; the HTTP API accepts unauthenticated requests")
	}
	if c.APIToken != "" && c.IsDev() {
		warnings = append(warnings, "API_TOKEN is set while APP_ENV=dev")
	}
	return warnings
}
