package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Маркер порядка байтов UTF-8: Excel ожидает его в кириллических CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV пишет отчёт в CSV (UTF-8 с BOM). Запись идёт во временный файл
// с последующим переименованием: при сбое прежняя версия файла остаётся
// нетронутой. Пустой отчёт даёт файл с одним заголовком.
func WriteCSV(path string, header []string, rows [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(tmp), err)
	}

	if err := writeCSVBody(f, header, rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(tmp), err)
	}
	return nil
}

func writeCSVBody(f *os.File, header []string, rows [][]string) error {
	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
