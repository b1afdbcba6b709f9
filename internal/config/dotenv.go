package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// AppEnv is APP_ENV, defaulting to "local"
func AppEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "local"
}

// dotEnvCandidates lists env files from highest to lowest priority
func dotEnvCandidates(env string) []string {
	return []string{
		".env." + env + ".local",
		".env." + env,
		".env.local",
		".env",
	}
}

// LoadDotEnv loads the env files of one APP_ENV. Variables already set in
// the process win over every file, and an earlier candidate wins over a
// later one. It returns the files that were loaded.
func LoadDotEnv(env string) ([]string, error) {
	var loaded []string
	for _, f := range dotEnvCandidates(env) {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) == 0 {
		return nil, nil
	}
	if err := godotenv.Load(loaded...); err != nil {
		return loaded, fmt.Errorf("load env files %v: %w", loaded, err)
	}
	return loaded, nil
}
