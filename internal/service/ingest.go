package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"egrn-parser/internal/parser"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// IngestStats счётчики одного прогона загрузки.
type IngestStats struct {
	Files      int
	FileErrors int
	Documents  int
	Duplicates int
	Failures   int
}

// listXMLFiles возвращает файлы с расширением .xml в директории
// (не рекурсивно, регистр расширения не учитывается).
func listXMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// ingestFile обрабатывает один XML-файл: потоково читает верхнеуровневые
// элементы выписок, собирает и сохраняет каждую. Сбой одного элемента
// логируется и не прерывает файл; память элемента освобождается сразу
// после обработки.
func (s *Service) ingestFile(ctx context.Context, path string, stats *IngestStats) error {
	base := filepath.Base(path)
	s.logger.Info("Начало парсинга файла", zap.String("file", base))

	err := parser.StreamElements(path, parser.ExtractTag, func(el *etree.Element) error {
		rec := parser.BuildExtract(el, base, s.logger)
		created, err := s.repo.SaveExtract(ctx, rec)
		if err != nil {
			stats.Failures++
			s.logger.Error("Ошибка при сохранении выписки",
				zap.String("file", base),
				zap.String("registration_number", rec.RegistrationNumber),
				zap.Error(err))
			return nil // изоляция сбоя на уровне документа
		}
		stats.Documents++
		if !created {
			stats.Duplicates++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Файл обработан", zap.String("file", base))
	return nil
}
