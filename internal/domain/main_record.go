package domain

import "time"

// MainRecord одна выписка ЕГРН о зарегистрированных ДДУ (таблица main_records).
// Владеет правами, обременениями и сделками; удаление каскадное.
type MainRecord struct {
	ID int64 `db:"id"`

	// details_statement
	OrganRegistrRights string     `db:"organ_registr_rights"` // Орган регистрации прав
	DateFormation      *time.Time `db:"date_formation"`       // Дата формирования выписки
	RegistrationNumber string     `db:"registration_number"`  // Номер выписки, UNIQUE (натуральный ключ)

	// details_request
	DateReceivedRequest                  *time.Time `db:"date_received_request"`
	DateReceiptRequestRegAuthorityRights *time.Time `db:"date_receipt_request_reg_authority_rights"`

	// land_record
	CadNumber               string   `db:"cad_number"`                // Кадастровый номер ЗУ
	ReadableAddress         string   `db:"readable_address"`          // Местоположение ЗУ
	PurposeCode             string   `db:"purpose_code"`              // Код категории земель ЗУ
	PurposeValue            string   `db:"purpose_value"`             // Категория земель ЗУ
	PermittedUseCode        string   `db:"permitted_use_code"`        // Код вида разрешенного использования ЗУ
	PermittedUseEstablished string   `db:"permitted_use_established"` // Вид(ы) разрешенного использования ЗУ
	Area                    *float64 `db:"area"`                      // Площадь ЗУ (кв. м)

	// метаданные загрузки
	SourceFile string    `db:"source_file"`
	ParsedAt   time.Time `db:"parsed_at"`

	RightRecords    []RightRecord
	RestrictRecords []RestrictRecord
	DealRecords     []DealRecord
}
