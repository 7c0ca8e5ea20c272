package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"egrn-parser/internal/config"
	"egrn-parser/internal/database"
	"egrn-parser/internal/logger"
	"egrn-parser/internal/repository"
	"egrn-parser/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	// Флаги перекрывают переменные окружения.
	flag.StringVar(&cfg.Store.Kind, "store", cfg.Store.Kind, "тип хранилища: postgres или sqlite")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "путь к файлу SQLite")
	flag.StringVar(&cfg.Database.Host, "db-host", cfg.Database.Host, "хост PostgreSQL")
	flag.IntVar(&cfg.Database.Port, "db-port", cfg.Database.Port, "порт PostgreSQL")
	flag.StringVar(&cfg.Database.User, "db-user", cfg.Database.User, "пользователь PostgreSQL")
	flag.StringVar(&cfg.Database.Password, "db-password", cfg.Database.Password, "пароль PostgreSQL")
	flag.StringVar(&cfg.Database.Database, "db-name", cfg.Database.Database, "имя базы данных PostgreSQL")
	flag.StringVar(&cfg.XMLDir, "xml-directory", cfg.XMLDir, "директория с XML-файлами")
	flag.StringVar(&cfg.OutputCSV, "output-csv", cfg.OutputCSV, "путь к выходному CSV файлу")
	flag.StringVar(&cfg.OutputXLSX, "output-xlsx", cfg.OutputXLSX, "путь к выходному XLSX файлу")
	flag.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "файл логов")
	flag.Parse()

	// Директории выходных файлов и лога должны существовать до старта.
	for _, path := range []string{cfg.OutputCSV, cfg.OutputXLSX, cfg.Log.File} {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "cannot create directory %s: %v\n", dir, err)
				os.Exit(1)
			}
		}
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Запуск парсера выписок ЕГРН",
		zap.String("store", cfg.Store.Kind),
		zap.String("xml_directory", cfg.XMLDir))

	db, err := database.Open(cfg)
	if err != nil {
		log.Error("Ошибка подключения к хранилищу", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close(db)
	log.Info("Соединение с базой данных установлено")

	repo := repository.NewSQLExtractsRepo(db, cfg.Store.Kind, log)
	svc := service.NewService(cfg, repo, log)

	if err := svc.Run(context.Background()); err != nil {
		os.Exit(1)
	}
	log.Info("Обработка завершена успешно")
}
