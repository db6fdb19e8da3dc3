package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"ballcam-analyzer/internal/parser/extractors"
)

// Config holds the analyzer settings read from the environment.
type Config struct {
	ReplayDir    string
	TargetPlayer string
	RrrocketPath string
	Debounce     float64
	Workers      int
	OutputDir    string
	DBPath       string
}

// Load reads the given .env files (".env" when none are given) into the
// environment, then builds a Config from it. Missing .env files are not an
// error; variables already set in the environment win over the file.
func Load(paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment.
func FromEnv() Config {
	return Config{
		ReplayDir:    GetEnv("REPLAY_DIR", "."),
		TargetPlayer: GetEnv("TARGET_PLAYER", ""),
		RrrocketPath: GetEnv("RRROCKET_PATH", "rrrocket"),
		Debounce:     GetEnvFloat("DEBOUNCE_THRESHOLD", extractors.DefaultDebounce),
		Workers:      GetEnvInt("WORKERS", runtime.NumCPU()),
		OutputDir:    GetEnv("OUTPUT_DIR", "outputs"),
		DBPath:       GetEnv("DB_PATH", ""),
	}
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat is GetEnvInt for floating point values. Negative values fall
// back too; zero is kept.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			return f
		}
	}
	return fallback
}
