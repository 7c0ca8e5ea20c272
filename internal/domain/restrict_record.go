package domain

import "time"

// RestrictRecord обременение/ограничение на участок (таблица restrict_records).
//
// DealNumber — мягкая ссылка на сделку по значению (не FK): заполняется из
// первого документа обременения с номером сделки и используется только при
// построении отчёта. Отсутствие сделки с таким номером — не ошибка.
type RestrictRecord struct {
	ID           int64 `db:"id"`
	MainRecordID int64 `db:"main_record_id"`

	RestrictionNumber   string     `db:"restriction_number"`    // Номер обременения/ограничения, UNIQUE
	RestrictionTypeCode string     `db:"restriction_type_code"` // Код вида обременения/ограничения
	RestrictionType     string     `db:"restriction_type"`      // Вид обременения/ограничения
	StartDate           *time.Time `db:"start_date"`            // Начало срока обременения/ограничения
	DurationMonths      *int       `db:"duration_months"`       // Срок в месяцах, из текста "<N> месяц..."
	DealValidityTime    string     `db:"deal_validity_time"`    // Срок действия сделки (свободный текст)
	TransferDeadline    string     `db:"transfer_deadline"`     // Признак ипотеки
	GuaranteePeriod     string     `db:"guarantee_period"`      // Срок обременения/ограничения
	Bank                string     `db:"bank"`                  // Банк
	BankINN             string     `db:"bank_inn"`              // ИНН банка
	RegistrationDate    *time.Time `db:"registration_date"`     // Дата государственной регистрации

	Documents  []Document `db:"-"` // Документы-основания, в БД — JSON
	DealNumber string     `db:"deal_number"`
}
