package repository

import (
	"context"

	"egrn-parser/internal/domain"
)

// ExtractsRepo хранилище выписок ЕГРН.
type ExtractsRepo interface {
	// EnsureSchema создаёт таблицы, если их нет. Существующее хранилище
	// переиспользуется: повторные запуски дополняют данные с дедупликацией.
	EnsureSchema(ctx context.Context) error

	// SaveExtract сохраняет одну выписку в отдельной транзакции.
	// Возвращает false без ошибки, если выписка с таким номером уже
	// загружена (дубликат целого документа).
	SaveExtract(ctx context.Context, rec *domain.MainRecord) (bool, error)

	// ListMainRecords загружает все выписки вместе с дочерними записями
	// для построения отчёта.
	ListMainRecords(ctx context.Context) ([]domain.MainRecord, error)
}
