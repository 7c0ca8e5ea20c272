package domain

import "time"

// RightRecord зарегистрированное право на земельный участок (таблица right_records).
type RightRecord struct {
	ID           int64 `db:"id"`
	MainRecordID int64 `db:"main_record_id"`

	RegistrationDate *time.Time `db:"registration_date"` // Дата государственной регистрации права
	RightNumber      string     `db:"right_number"`      // Номер государственной регистрации права, UNIQUE
	RightTypeCode    string     `db:"right_type_code"`   // Код вида права
	RightType        string     `db:"right_type"`        // Вид права

	Holders   []Holder   `db:"-"` // Правообладатели ЗУ, в БД — JSON
	Documents []Document `db:"-"` // Документы-основания, в БД — JSON
}
