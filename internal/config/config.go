package config

import (
	"os"
	"strconv"
)

// Config настройки парсера выписок ЕГРН
type Config struct {
	Store struct {
		Kind string // "postgres" | "sqlite"
	}
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}
	SQLitePath string

	XMLDir     string // директория с XML-файлами (не рекурсивно)
	OutputCSV  string
	OutputXLSX string

	Log struct {
		Level  string
		Format string
		File   string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.Store.Kind = getEnv("STORE_KIND", "sqlite")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "egrn")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.SQLitePath = getEnv("SQLITE_PATH", "egrn_database.sqlite")

	cfg.XMLDir = getEnv("XML_DIRECTORY", "xml_files")
	cfg.OutputCSV = getEnv("OUTPUT_CSV", "output/restrict_records.csv")
	cfg.OutputXLSX = getEnv("OUTPUT_XLSX", "output/restrict_records.xlsx")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")
	cfg.Log.File = getEnv("LOG_FILE", "parser.log")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
