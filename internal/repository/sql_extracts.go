package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"egrn-parser/internal/domain"

	"go.uber.org/zap"
)

// SQLExtractsRepo реализация ExtractsRepo поверх database/sql.
// Работает с PostgreSQL и SQLite: весь DML общий, различия диалектов
// ограничены DDL (см. schema.go).
type SQLExtractsRepo struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

func NewSQLExtractsRepo(db *sql.DB, dialect string, logger *zap.Logger) *SQLExtractsRepo {
	return &SQLExtractsRepo{db: db, dialect: dialect, logger: logger}
}

func (r *SQLExtractsRepo) EnsureSchema(ctx context.Context) error {
	stmts, err := schemaStatements(r.dialect)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SaveExtract сохраняет выписку и её дочерние записи в одной транзакции.
// Дубликат по registration_number — пропуск всего документа; дубликат
// дочернего натурального ключа — пропуск только этой записи, остальные
// сохраняются. Любая ошибка откатывает документ целиком.
func (r *SQLExtractsRepo) SaveExtract(ctx context.Context, rec *domain.MainRecord) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM main_records WHERE registration_number = $1`,
		rec.RegistrationNumber,
	).Scan(&existingID)
	if err == nil {
		r.logger.Info("Выписка уже загружена, пропуск",
			zap.String("registration_number", rec.RegistrationNumber),
			zap.Int64("id", existingID))
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup main record: %w", err)
	}

	var mainID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO main_records (
			organ_registr_rights, date_formation, registration_number,
			date_received_request, date_receipt_request_reg_authority_rights,
			cad_number, readable_address, purpose_code, purpose_value,
			permitted_use_code, permitted_use_established, area,
			source_file, parsed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		rec.OrganRegistrRights, rec.DateFormation, rec.RegistrationNumber,
		rec.DateReceivedRequest, rec.DateReceiptRequestRegAuthorityRights,
		rec.CadNumber, rec.ReadableAddress, rec.PurposeCode, rec.PurposeValue,
		rec.PermittedUseCode, rec.PermittedUseEstablished, rec.Area,
		rec.SourceFile, rec.ParsedAt,
	).Scan(&mainID)
	if err != nil {
		return false, fmt.Errorf("insert main record: %w", err)
	}

	for _, right := range rec.RightRecords {
		exists, err := r.childExists(ctx, tx, `SELECT id FROM right_records WHERE right_number = $1`, right.RightNumber)
		if err != nil {
			return false, fmt.Errorf("lookup right record %s: %w", right.RightNumber, err)
		}
		if exists {
			r.logger.Debug("Право уже загружено, пропуск", zap.String("right_number", right.RightNumber))
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO right_records (
				main_record_id, registration_date, right_number,
				right_type_code, right_type, holders, documents
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			mainID, right.RegistrationDate, right.RightNumber,
			right.RightTypeCode, right.RightType,
			encodeJSON(right.Holders), encodeJSON(right.Documents),
		)
		if err != nil {
			return false, fmt.Errorf("insert right record %s: %w", right.RightNumber, err)
		}
	}

	for _, restrict := range rec.RestrictRecords {
		exists, err := r.childExists(ctx, tx, `SELECT id FROM restrict_records WHERE restriction_number = $1`, restrict.RestrictionNumber)
		if err != nil {
			return false, fmt.Errorf("lookup restrict record %s: %w", restrict.RestrictionNumber, err)
		}
		if exists {
			r.logger.Debug("Обременение уже загружено, пропуск",
				zap.String("restriction_number", restrict.RestrictionNumber))
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO restrict_records (
				main_record_id, restriction_number, restriction_type_code,
				restriction_type, start_date, duration_months,
				deal_validity_time, transfer_deadline, guarantee_period,
				bank, bank_inn, registration_date, documents, deal_number
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			mainID, restrict.RestrictionNumber, restrict.RestrictionTypeCode,
			restrict.RestrictionType, restrict.StartDate, restrict.DurationMonths,
			restrict.DealValidityTime, restrict.TransferDeadline, restrict.GuaranteePeriod,
			restrict.Bank, restrict.BankINN, restrict.RegistrationDate,
			encodeJSON(restrict.Documents), restrict.DealNumber,
		)
		if err != nil {
			return false, fmt.Errorf("insert restrict record %s: %w", restrict.RestrictionNumber, err)
		}
	}

	for _, deal := range rec.DealRecords {
		exists, err := r.childExists(ctx, tx, `SELECT id FROM deal_records WHERE deal_number = $1`, deal.DealNumber)
		if err != nil {
			return false, fmt.Errorf("lookup deal record %s: %w", deal.DealNumber, err)
		}
		if exists {
			r.logger.Debug("Сделка уже загружена, пропуск", zap.String("deal_number", deal.DealNumber))
			continue
		}
		var dealID int64
		err = tx.QueryRowContext(ctx, `
			INSERT INTO deal_records (
				main_record_id, deal_number, registration_date,
				deal_type_code, deal_type_value, first_ddu_date,
				room_name, room_number, floor_number, room_area,
				bank, bank_inn, guarantee_period, transfer_deadline, documents
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id`,
			mainID, deal.DealNumber, deal.RegistrationDate,
			deal.DealTypeCode, deal.DealTypeValue, deal.FirstDDUDate,
			deal.RoomName, deal.RoomNumber, deal.FloorNumber, deal.RoomArea,
			deal.Bank, deal.BankINN, deal.GuaranteePeriod, deal.TransferDeadline,
			encodeJSON(deal.Documents),
		).Scan(&dealID)
		if err != nil {
			return false, fmt.Errorf("insert deal record %s: %w", deal.DealNumber, err)
		}

		// У участников нет натурального ключа — вставляются все.
		for _, party := range deal.Parties {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO deal_parties (
					deal_record_id, concession_mark,
					party_type_code, party_type_value, party_info
				) VALUES ($1, $2, $3, $4, $5)`,
				dealID, party.ConcessionMark,
				party.PartyTypeCode, party.PartyTypeValue, encodeJSON(party.Info),
			)
			if err != nil {
				return false, fmt.Errorf("insert deal party: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// childExists проверяет наличие дочерней записи по натуральному ключу.
// Ошибка запроса не считается отсутствием записи: она возвращается
// вызывающему и откатывает документ.
func (r *SQLExtractsRepo) childExists(ctx context.Context, tx *sql.Tx, query string, key string) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, query, key).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// ListMainRecords загружает весь граф выписок в порядке добавления.
func (r *SQLExtractsRepo) ListMainRecords(ctx context.Context) ([]domain.MainRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organ_registr_rights, date_formation, registration_number,
		       date_received_request, date_receipt_request_reg_authority_rights,
		       cad_number, readable_address, purpose_code, purpose_value,
		       permitted_use_code, permitted_use_established, area,
		       source_file, parsed_at
		FROM main_records
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query main records: %w", err)
	}
	defer rows.Close()

	records := []domain.MainRecord{}
	for rows.Next() {
		var rec domain.MainRecord
		var dateFormation, dateReceived, dateReceipt, parsedAt sql.NullTime
		var area sql.NullFloat64
		if err := rows.Scan(
			&rec.ID, &rec.OrganRegistrRights, &dateFormation, &rec.RegistrationNumber,
			&dateReceived, &dateReceipt,
			&rec.CadNumber, &rec.ReadableAddress, &rec.PurposeCode, &rec.PurposeValue,
			&rec.PermittedUseCode, &rec.PermittedUseEstablished, &area,
			&rec.SourceFile, &parsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan main record: %w", err)
		}
		rec.DateFormation = timePtr(dateFormation)
		rec.DateReceivedRequest = timePtr(dateReceived)
		rec.DateReceiptRequestRegAuthorityRights = timePtr(dateReceipt)
		if parsedAt.Valid {
			rec.ParsedAt = parsedAt.Time
		}
		if area.Valid {
			rec.Area = &area.Float64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if err := r.loadChildren(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *SQLExtractsRepo) loadChildren(ctx context.Context, rec *domain.MainRecord) error {
	rightRows, err := r.db.QueryContext(ctx, `
		SELECT id, registration_date, right_number, right_type_code, right_type,
		       holders, documents
		FROM right_records WHERE main_record_id = $1 ORDER BY id`, rec.ID)
	if err != nil {
		return fmt.Errorf("query right records: %w", err)
	}
	defer rightRows.Close()
	for rightRows.Next() {
		var right domain.RightRecord
		var regDate sql.NullTime
		var holders, documents string
		if err := rightRows.Scan(&right.ID, &regDate, &right.RightNumber,
			&right.RightTypeCode, &right.RightType, &holders, &documents); err != nil {
			return fmt.Errorf("scan right record: %w", err)
		}
		right.MainRecordID = rec.ID
		right.RegistrationDate = timePtr(regDate)
		decodeJSON(holders, &right.Holders, r.logger)
		decodeJSON(documents, &right.Documents, r.logger)
		rec.RightRecords = append(rec.RightRecords, right)
	}
	if err := rightRows.Err(); err != nil {
		return err
	}

	restrictRows, err := r.db.QueryContext(ctx, `
		SELECT id, restriction_number, restriction_type_code, restriction_type,
		       start_date, duration_months, deal_validity_time, transfer_deadline,
		       guarantee_period, bank, bank_inn, registration_date, documents, deal_number
		FROM restrict_records WHERE main_record_id = $1 ORDER BY id`, rec.ID)
	if err != nil {
		return fmt.Errorf("query restrict records: %w", err)
	}
	defer restrictRows.Close()
	for restrictRows.Next() {
		var restrict domain.RestrictRecord
		var startDate, regDate sql.NullTime
		var months sql.NullInt64
		var documents string
		if err := restrictRows.Scan(&restrict.ID, &restrict.RestrictionNumber,
			&restrict.RestrictionTypeCode, &restrict.RestrictionType,
			&startDate, &months, &restrict.DealValidityTime, &restrict.TransferDeadline,
			&restrict.GuaranteePeriod, &restrict.Bank, &restrict.BankINN,
			&regDate, &documents, &restrict.DealNumber); err != nil {
			return fmt.Errorf("scan restrict record: %w", err)
		}
		restrict.MainRecordID = rec.ID
		restrict.StartDate = timePtr(startDate)
		restrict.RegistrationDate = timePtr(regDate)
		if months.Valid {
			n := int(months.Int64)
			restrict.DurationMonths = &n
		}
		decodeJSON(documents, &restrict.Documents, r.logger)
		rec.RestrictRecords = append(rec.RestrictRecords, restrict)
	}
	if err := restrictRows.Err(); err != nil {
		return err
	}

	dealRows, err := r.db.QueryContext(ctx, `
		SELECT id, deal_number, registration_date, deal_type_code, deal_type_value,
		       first_ddu_date, room_name, room_number, floor_number, room_area,
		       bank, bank_inn, guarantee_period, transfer_deadline, documents
		FROM deal_records WHERE main_record_id = $1 ORDER BY id`, rec.ID)
	if err != nil {
		return fmt.Errorf("query deal records: %w", err)
	}
	defer dealRows.Close()
	for dealRows.Next() {
		var deal domain.DealRecord
		var regDate, dduDate sql.NullTime
		var floor sql.NullInt64
		var roomArea sql.NullFloat64
		var documents string
		if err := dealRows.Scan(&deal.ID, &deal.DealNumber, &regDate,
			&deal.DealTypeCode, &deal.DealTypeValue, &dduDate,
			&deal.RoomName, &deal.RoomNumber, &floor, &roomArea,
			&deal.Bank, &deal.BankINN, &deal.GuaranteePeriod,
			&deal.TransferDeadline, &documents); err != nil {
			return fmt.Errorf("scan deal record: %w", err)
		}
		deal.MainRecordID = rec.ID
		deal.RegistrationDate = timePtr(regDate)
		deal.FirstDDUDate = timePtr(dduDate)
		if floor.Valid {
			n := int(floor.Int64)
			deal.FloorNumber = &n
		}
		if roomArea.Valid {
			deal.RoomArea = &roomArea.Float64
		}
		decodeJSON(documents, &deal.Documents, r.logger)
		rec.DealRecords = append(rec.DealRecords, deal)
	}
	if err := dealRows.Err(); err != nil {
		return err
	}

	for i := range rec.DealRecords {
		deal := &rec.DealRecords[i]
		partyRows, err := r.db.QueryContext(ctx, `
			SELECT id, concession_mark, party_type_code, party_type_value, party_info
			FROM deal_parties WHERE deal_record_id = $1 ORDER BY id`, deal.ID)
		if err != nil {
			return fmt.Errorf("query deal parties: %w", err)
		}
		for partyRows.Next() {
			var party domain.DealParty
			var info string
			if err := partyRows.Scan(&party.ID, &party.ConcessionMark,
				&party.PartyTypeCode, &party.PartyTypeValue, &info); err != nil {
				partyRows.Close()
				return fmt.Errorf("scan deal party: %w", err)
			}
			party.DealRecordID = deal.ID
			decodeJSON(info, &party.Info, r.logger)
			deal.Parties = append(deal.Parties, party)
		}
		if err := partyRows.Err(); err != nil {
			partyRows.Close()
			return err
		}
		partyRows.Close()
	}
	return nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func decodeJSON(s string, dst any, logger *zap.Logger) {
	if s == "" {
		return
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		logger.Warn("Невозможно распарсить JSON-поле", zap.String("value", s), zap.Error(err))
	}
}
