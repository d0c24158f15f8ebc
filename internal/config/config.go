package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string

	// ImportConfigFile points to the YAML file with import rules, keep
	// fields and the file type allow-list.
	ImportConfigFile string

	// TempPath is where uploaded packages are saved and extracted.
	TempPath string

	// KeepTempFiles disables cleanup of extraction directories, useful when
	// debugging broken packages.
	KeepTempFiles bool

	// LogDir receives the timestamped import log files.
	LogDir string

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:      tablePrefix,
		ImportConfigFile: getEnv("IMPORT_CONFIG_FILE", ""),
		TempPath:         getEnv("TEMP_PATH", os.TempDir()),
		KeepTempFiles:    getEnv("KEEP_TEMP_FILES", "false") == "true",
		LogDir:           getEnv("LOG_DIR", "logs"),
		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
