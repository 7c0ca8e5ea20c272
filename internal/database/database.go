package database

import (
	"database/sql"
	"fmt"

	"egrn-parser/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Поддерживаемые типы хранилища.
const (
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
)

// Open открывает соединение с реляционным хранилищем по конфигурации.
// Неизвестный тип хранилища — фатальная ошибка конфигурации.
func Open(cfg *config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Store.Kind {
	case KindPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
			cfg.Database.Password, cfg.Database.Database, cfg.Database.SSLMode)
		db, err = sql.Open("postgres", dsn)
	case KindSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path is required for sqlite store")
		}
		db, err = sql.Open("sqlite3", cfg.SQLitePath+"?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported store kind: %q", cfg.Store.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close закрывает соединение с базой данных.
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
