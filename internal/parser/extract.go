package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Извлечение скалярных значений из поддеревьев XML. Контракт терпимости к
// формату: отсутствующий узел — пустое значение, непустой текст в неверном
// формате — предупреждение в лог и "нет значения", обработка продолжается.

// text возвращает текст первого элемента по пути, с обрезкой пробелов.
// Отсутствие элемента — пустая строка, не ошибка.
func text(el *etree.Element, path string) string {
	if el == nil {
		return ""
	}
	if found := el.FindElement(path); found != nil {
		return strings.TrimSpace(found.Text())
	}
	return ""
}

// Принимаются либо дата "2006-01-02", либо метка времени ISO-8601
// (хвостовой "Z" эквивалентен смещению +00:00).
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", s)
}

// dateField извлекает дату по пути; непустой текст в неверном формате
// логируется и даёт nil.
func dateField(el *etree.Element, path string, field string, log *zap.Logger) *time.Time {
	s := text(el, path)
	if s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		log.Warn("Некорректный формат даты", zap.String("field", field), zap.String("value", s))
		return nil
	}
	return &t
}

func floatField(el *etree.Element, path string, field string, log *zap.Logger) *float64 {
	s := text(el, path)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warn("Некорректный формат числа", zap.String("field", field), zap.String("value", s))
		return nil
	}
	return &f
}

func intField(el *etree.Element, path string, field string, log *zap.Logger) *int {
	s := text(el, path)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Warn("Некорректный формат целого числа", zap.String("field", field), zap.String("value", s))
		return nil
	}
	return &i
}

// Первое целое число перед словом "месяц" в свободном тексте срока действия.
var monthsRe = regexp.MustCompile(`(\d+)\s*месяц`)

// durationMonths выводит срок в месяцах из текста вида
// "Срок действия 24 месяца". Нет совпадения — nil (не ноль).
func durationMonths(validity string) *int {
	m := monthsRe.FindStringSubmatch(validity)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
