package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"egrn-parser/internal/config"
	"egrn-parser/internal/export"
	"egrn-parser/internal/repository"

	"go.uber.org/zap"
)

// Service последовательный конвейер: загрузка XML-выписок в хранилище,
// затем экспорт плоского отчёта в CSV и XLSX. Никакой внутренней
// конкурентности; вызывающий код при фоновом запуске обязан
// сериализовать обращения.
type Service struct {
	cfg    *config.Config
	repo   repository.ExtractsRepo
	logger *zap.Logger
}

func NewService(cfg *config.Config, repo repository.ExtractsRepo, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, repo: repo, logger: logger}
}

// Run выполняет полный прогон. Ненулевая ошибка возвращается только при
// фатальной ошибке конфигурации (отсутствующая директория с XML);
// ошибки уровня файла, документа и экспорта логируются и поглощаются.
func (s *Service) Run(ctx context.Context) error {
	info, err := os.Stat(s.cfg.XMLDir)
	if err != nil || !info.IsDir() {
		s.logger.Error("Директория с XML-файлами не существует", zap.String("dir", s.cfg.XMLDir))
		return fmt.Errorf("xml directory does not exist: %s", s.cfg.XMLDir)
	}

	if err := s.repo.EnsureSchema(ctx); err != nil {
		s.logger.Error("Ошибка инициализации схемы хранилища", zap.Error(err))
		return err
	}

	files, err := listXMLFiles(s.cfg.XMLDir)
	if err != nil {
		s.logger.Error("Ошибка чтения директории", zap.Error(err))
		return err
	}
	if len(files) == 0 {
		// Не ошибка: прогон завершается успешно без выходных файлов.
		s.logger.Warn("XML-файлы для обработки не найдены", zap.String("dir", s.cfg.XMLDir))
		return nil
	}
	s.logger.Info("Найдены XML-файлы для обработки", zap.Int("count", len(files)))

	stats := &IngestStats{}
	for _, file := range files {
		stats.Files++
		if err := s.ingestFile(ctx, file, stats); err != nil {
			stats.FileErrors++
			s.logger.Error("Ошибка при парсинге файла",
				zap.String("file", filepath.Base(file)), zap.Error(err))
		}
	}
	s.logger.Info("Парсинг всех файлов завершён",
		zap.Int("files", stats.Files),
		zap.Int("file_errors", stats.FileErrors),
		zap.Int("documents", stats.Documents),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("failures", stats.Failures))

	s.export(ctx)
	return nil
}

// export строит отчёт по всему хранилищу и пишет CSV и XLSX.
// Ошибки экспорта логируются и не прерывают работу; файлы записываются
// атомарно — прежняя версия не затирается при сбое.
func (s *Service) export(ctx context.Context) {
	s.logger.Info("Начало экспорта данных в CSV и XLSX")

	records, err := s.repo.ListMainRecords(ctx)
	if err != nil {
		s.logger.Error("Ошибка при выборке данных для экспорта", zap.Error(err))
		return
	}

	rows := FlattenRecords(records)
	if len(rows) == 0 {
		// Файлы с одним заголовком всё равно записываются.
		s.logger.Warn("Нет данных для экспорта, будут записаны пустые отчёты")
	}

	if err := export.WriteCSV(s.cfg.OutputCSV, ReportColumns, rows); err != nil {
		s.logger.Error("Ошибка при сохранении CSV", zap.String("path", s.cfg.OutputCSV), zap.Error(err))
	} else {
		s.logger.Info("Данные сохранены в CSV", zap.String("path", s.cfg.OutputCSV), zap.Int("rows", len(rows)))
	}

	if err := export.WriteXLSX(s.cfg.OutputXLSX, ReportColumns, rows); err != nil {
		s.logger.Error("Ошибка при сохранении XLSX", zap.String("path", s.cfg.OutputXLSX), zap.Error(err))
	} else {
		s.logger.Info("Данные сохранены в XLSX", zap.String("path", s.cfg.OutputXLSX), zap.Int("rows", len(rows)))
	}
}
