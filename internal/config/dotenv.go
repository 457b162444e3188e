package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// A missing file is not an error. Existing environment variables win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(path)
}

// LoadDotEnvFromFiles loads environment variables from several .env files in
// order. The first file that sets a variable wins; missing files are skipped.
func LoadDotEnvFromFiles(paths ...string) error {
	for _, path := range paths {
		if err := LoadDotEnv(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig loads configuration from .env files (optional) and environment
// variables, which take precedence over the files. With no paths it reads
// ".env" in the current directory.
func LoadConfig(envPaths ...string) (AppConfig, error) {
	if len(envPaths) == 0 {
		envPaths = []string{""}
	}
	if err := LoadDotEnvFromFiles(envPaths...); err != nil {
		return AppConfig{}, err
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	return envCfg.ToAppConfig(), nil
}
