package repository

import "fmt"

// DDL пяти таблиц хранилища. Диалекты отличаются только типом
// автоинкрементного первичного ключа и типом чисел с плавающей точкой;
// остальной SQL общий (см. internal/database по видам хранилища).

type dialectTypes struct {
	pk    string
	ref   string
	float string
}

var dialects = map[string]dialectTypes{
	"postgres": {pk: "BIGSERIAL PRIMARY KEY", ref: "BIGINT", float: "DOUBLE PRECISION"},
	"sqlite":   {pk: "INTEGER PRIMARY KEY AUTOINCREMENT", ref: "INTEGER", float: "REAL"},
}

func schemaStatements(dialect string) ([]string, error) {
	dt, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %q", dialect)
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS main_records (
			id %s,
			organ_registr_rights TEXT,
			date_formation TIMESTAMP,
			registration_number TEXT UNIQUE,
			date_received_request TIMESTAMP,
			date_receipt_request_reg_authority_rights TIMESTAMP,
			cad_number TEXT,
			readable_address TEXT,
			purpose_code TEXT,
			purpose_value TEXT,
			permitted_use_code TEXT,
			permitted_use_established TEXT,
			area %s,
			source_file TEXT,
			parsed_at TIMESTAMP
		)`, dt.pk, dt.float),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS right_records (
			id %s,
			main_record_id %s NOT NULL REFERENCES main_records(id) ON DELETE CASCADE,
			registration_date TIMESTAMP,
			right_number TEXT UNIQUE,
			right_type_code TEXT,
			right_type TEXT,
			holders TEXT,
			documents TEXT
		)`, dt.pk, dt.ref),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS restrict_records (
			id %s,
			main_record_id %s NOT NULL REFERENCES main_records(id) ON DELETE CASCADE,
			restriction_number TEXT UNIQUE,
			restriction_type_code TEXT,
			restriction_type TEXT,
			start_date TIMESTAMP,
			duration_months INTEGER,
			deal_validity_time TEXT,
			transfer_deadline TEXT,
			guarantee_period TEXT,
			bank TEXT,
			bank_inn TEXT,
			registration_date TIMESTAMP,
			documents TEXT,
			deal_number TEXT
		)`, dt.pk, dt.ref),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS deal_records (
			id %s,
			main_record_id %s NOT NULL REFERENCES main_records(id) ON DELETE CASCADE,
			deal_number TEXT UNIQUE,
			registration_date TIMESTAMP,
			deal_type_code TEXT,
			deal_type_value TEXT,
			first_ddu_date TIMESTAMP,
			room_name TEXT,
			room_number TEXT,
			floor_number INTEGER,
			room_area %s,
			bank TEXT,
			bank_inn TEXT,
			guarantee_period TEXT,
			transfer_deadline TEXT,
			documents TEXT
		)`, dt.pk, dt.ref, dt.float),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS deal_parties (
			id %s,
			deal_record_id %s NOT NULL REFERENCES deal_records(id) ON DELETE CASCADE,
			concession_mark TEXT,
			party_type_code TEXT,
			party_type_value TEXT,
			party_info TEXT
		)`, dt.pk, dt.ref),

		`CREATE INDEX IF NOT EXISTS idx_right_records_main ON right_records(main_record_id)`,
		`CREATE INDEX IF NOT EXISTS idx_restrict_records_main ON restrict_records(main_record_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deal_records_main ON deal_records(main_record_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deal_parties_deal ON deal_parties(deal_record_id)`,
	}, nil
}
