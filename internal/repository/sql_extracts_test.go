package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"egrn-parser/internal/domain"
	"egrn-parser/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// Тесты хранилища используют SQLite во временном файле: общий DML
// одинаков для обоих диалектов, различия ограничены DDL.
func newTestRepo(t *testing.T) *SQLExtractsRepo {
	t.Helper()

	path := filepath.Join(t.TempDir(), "extracts.db")
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		t.Skipf("Драйвер SQLite недоступен: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Драйвер SQLite недоступен: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewSQLExtractsRepo(db, "sqlite", logger.NewNop())
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return repo
}

func testDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleRecord(regNumber string) *domain.MainRecord {
	months := 24
	area := 12345.6
	roomArea := 42.7
	floor := 9
	return &domain.MainRecord{
		OrganRegistrRights:      "Управление Росреестра",
		DateFormation:           testDate(2021, 3, 15),
		RegistrationNumber:      regNumber,
		CadNumber:               "50:21:0000000:100",
		ReadableAddress:         "Московская область",
		PurposeValue:            "Земли населённых пунктов",
		PermittedUseEstablished: "Многоэтажная жилая застройка",
		Area:                    &area,
		SourceFile:              "extract.xml",
		ParsedAt:                time.Date(2021, 3, 16, 10, 0, 0, 0, time.UTC),
		RightRecords: []domain.RightRecord{{
			RightNumber:      regNumber + "-право",
			RightType:        "Собственность",
			RegistrationDate: testDate(2020, 12, 30),
			Holders: []domain.Holder{
				{Name: "ООО «Застройщик»", INN: "7701234567", OGRN: "1027700000000"},
			},
			Documents: []domain.Document{{Name: "Акт", Number: "А-1"}},
		}},
		RestrictRecords: []domain.RestrictRecord{{
			RestrictionNumber: regNumber + "-обр",
			RestrictionType:   "Ипотека",
			Bank:              "ПАО «Банк»",
			BankINN:           "7729000000",
			RegistrationDate:  testDate(2021, 2, 1),
			DurationMonths:    &months,
			DealValidityTime:  "24 месяца",
			DealNumber:        regNumber + "-сделка",
		}},
		DealRecords: []domain.DealRecord{{
			DealNumber:       regNumber + "-сделка",
			RegistrationDate: testDate(2020, 11, 10),
			FirstDDUDate:     testDate(2020, 10, 1),
			RoomName:         "Квартира",
			RoomNumber:       "127",
			FloorNumber:      &floor,
			RoomArea:         &roomArea,
			Documents: []domain.Document{{
				Value:  "Договор участия в долевом строительстве",
				Number: "ДДУ-1",
				Date:   "2020-10-01",
			}},
			Parties: []domain.DealParty{{
				PartyTypeValue: "Участник долевого строительства",
				Info: domain.PartyInfo{
					Kind: domain.PartyIndividual,
					Name: "Иванов Иван Иванович",
				},
			}},
		}},
	}
}

func TestSaveExtractRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inserted, err := repo.SaveExtract(ctx, sampleRecord("рег-1"))
	if err != nil {
		t.Fatalf("SaveExtract: %v", err)
	}
	if !inserted {
		t.Fatal("ожидалась вставка новой выписки")
	}

	records, err := repo.ListMainRecords(ctx)
	if err != nil {
		t.Fatalf("ListMainRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ожидалась 1 выписка, получено %d", len(records))
	}

	rec := records[0]
	if rec.RegistrationNumber != "рег-1" {
		t.Errorf("registration_number = %q", rec.RegistrationNumber)
	}
	if rec.CadNumber != "50:21:0000000:100" {
		t.Errorf("cad_number = %q", rec.CadNumber)
	}
	if rec.Area == nil || *rec.Area != 12345.6 {
		t.Errorf("area = %v", rec.Area)
	}
	if rec.DateFormation == nil || rec.DateFormation.Format("2006-01-02") != "2021-03-15" {
		t.Errorf("date_formation = %v", rec.DateFormation)
	}

	if len(rec.RightRecords) != 1 {
		t.Fatalf("ожидалось 1 право, получено %d", len(rec.RightRecords))
	}
	right := rec.RightRecords[0]
	if right.RightNumber != "рег-1-право" {
		t.Errorf("right_number = %q", right.RightNumber)
	}
	if len(right.Holders) != 1 || right.Holders[0].INN != "7701234567" {
		t.Errorf("holders = %+v", right.Holders)
	}
	if len(right.Documents) != 1 || right.Documents[0].Number != "А-1" {
		t.Errorf("documents = %+v", right.Documents)
	}

	if len(rec.RestrictRecords) != 1 {
		t.Fatalf("ожидалось 1 обременение, получено %d", len(rec.RestrictRecords))
	}
	restrict := rec.RestrictRecords[0]
	if restrict.DurationMonths == nil || *restrict.DurationMonths != 24 {
		t.Errorf("duration_months = %v", restrict.DurationMonths)
	}
	if restrict.DealNumber != "рег-1-сделка" {
		t.Errorf("deal_number = %q", restrict.DealNumber)
	}

	if len(rec.DealRecords) != 1 {
		t.Fatalf("ожидалась 1 сделка, получено %d", len(rec.DealRecords))
	}
	deal := rec.DealRecords[0]
	if deal.FloorNumber == nil || *deal.FloorNumber != 9 {
		t.Errorf("floor_number = %v", deal.FloorNumber)
	}
	if deal.RoomArea == nil || *deal.RoomArea != 42.7 {
		t.Errorf("room_area = %v", deal.RoomArea)
	}
	if len(deal.Parties) != 1 {
		t.Fatalf("ожидался 1 участник, получено %d", len(deal.Parties))
	}
	party := deal.Parties[0]
	if party.Info.Kind != domain.PartyIndividual || party.Info.Name != "Иванов Иван Иванович" {
		t.Errorf("party_info = %+v", party.Info)
	}
}

func TestSaveExtractDuplicateDocument(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveExtract(ctx, sampleRecord("рег-1")); err != nil {
		t.Fatalf("SaveExtract: %v", err)
	}

	// Повторная загрузка того же номера регистрации — пропуск без ошибки.
	inserted, err := repo.SaveExtract(ctx, sampleRecord("рег-1"))
	if err != nil {
		t.Fatalf("SaveExtract повторно: %v", err)
	}
	if inserted {
		t.Fatal("дубликат не должен вставляться")
	}

	records, err := repo.ListMainRecords(ctx)
	if err != nil {
		t.Fatalf("ListMainRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ожидалась 1 выписка, получено %d", len(records))
	}
}

func TestSaveExtractChildDedup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.SaveExtract(ctx, sampleRecord("рег-1")); err != nil {
		t.Fatalf("SaveExtract: %v", err)
	}

	// Вторая выписка с другим номером регистрации повторяет натуральные
	// ключи детей первой и добавляет одно новое право: дубликаты детей
	// пропускаются поодиночке, новое право сохраняется.
	second := sampleRecord("рег-2")
	second.RightRecords[0].RightNumber = "рег-1-право"
	second.RightRecords = append(second.RightRecords, domain.RightRecord{
		RightNumber: "рег-2-право",
		RightType:   "Аренда",
	})
	second.RestrictRecords[0].RestrictionNumber = "рег-1-обр"
	second.DealRecords[0].DealNumber = "рег-1-сделка"

	inserted, err := repo.SaveExtract(ctx, second)
	if err != nil {
		t.Fatalf("SaveExtract второй выписки: %v", err)
	}
	if !inserted {
		t.Fatal("ожидалась вставка второй выписки")
	}

	records, err := repo.ListMainRecords(ctx)
	if err != nil {
		t.Fatalf("ListMainRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ожидались 2 выписки, получено %d", len(records))
	}

	rec := records[1]
	if len(rec.RightRecords) != 1 || rec.RightRecords[0].RightNumber != "рег-2-право" {
		t.Errorf("ожидалось только новое право, получено %+v", rec.RightRecords)
	}
	if len(rec.RestrictRecords) != 0 {
		t.Errorf("дубликат обременения не должен сохраняться: %+v", rec.RestrictRecords)
	}
	if len(rec.DealRecords) != 0 {
		t.Errorf("дубликат сделки не должен сохраняться: %+v", rec.DealRecords)
	}
}

func TestChildExistsQueryError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	defer tx.Rollback()

	// Ошибка запроса (несуществующая таблица) должна возвращаться,
	// а не трактоваться как отсутствие записи.
	exists, err := repo.childExists(ctx, tx,
		`SELECT id FROM no_such_table WHERE key = $1`, "ключ")
	if err == nil {
		t.Fatal("ожидалась ошибка запроса")
	}
	if exists {
		t.Fatal("ошибка запроса не должна означать наличие записи")
	}

	exists, err = repo.childExists(ctx, tx,
		`SELECT id FROM right_records WHERE right_number = $1`, "нет-такого")
	if err != nil {
		t.Fatalf("childExists: %v", err)
	}
	if exists {
		t.Fatal("запись не должна существовать")
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("повторный EnsureSchema: %v", err)
	}
}

func TestEnsureSchemaUnknownDialect(t *testing.T) {
	repo := newTestRepo(t)
	bad := NewSQLExtractsRepo(repo.db, "oracle", logger.NewNop())
	if err := bad.EnsureSchema(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка для неизвестного диалекта")
	}
}
