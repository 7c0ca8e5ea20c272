package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"egrn-parser/internal/config"
	"egrn-parser/internal/logger"
	"egrn-parser/internal/repository"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// Минимальная выписка для сквозного прогона: право, обременение и
// сделка связаны одним номером сделки.
const extractTemplate = `
<extract_contract_participation_share_holdings>
  <details_statement><group_top_requisites>
    <organ_registr_rights>Управление Росреестра</organ_registr_rights>
    <date_formation>2021-05-03</date_formation>
    <registration_number>%s</registration_number>
  </group_top_requisites></details_statement>
  <land_record>
    <object><common_data><cad_number>50:21:0000000:100</cad_number></common_data></object>
    <address_location><address><readable_address>Московская область</readable_address></address></address_location>
    <params><area><value>12345.6</value></area></params>
  </land_record>
  <right_records><right_record>
    <record_info><registration_date>2020-12-30</registration_date></record_info>
    <right_data>
      <right_number>%s-право</right_number>
      <right_type><code>001002000000</code><value>Собственность</value></right_type>
    </right_data>
    <right_holders><right_holder>
      <legal_entity><entity><resident>
        <name>ООО «Застройщик»</name><inn>7701234567</inn>
      </resident></entity></legal_entity>
    </right_holder></right_holders>
  </right_record></right_records>
  <restrict_records><restrict_record>
    <restrictions_encumbrances_data>
      <restriction_encumbrance_number>%s-обр</restriction_encumbrance_number>
      <restriction_encumbrance_type><code>022007000000</code><value>Залог</value></restriction_encumbrance_type>
    </restrictions_encumbrances_data>
    <record_info><registration_date>2021-02-01</registration_date></record_info>
    <underlying_documents><underlying_document>
      <document_code><code>558401020000</code><value>Договор участия в долевом строительстве</value></document_code>
      <document_number>ДДУ-1</document_number>
      <deal_registered_number><number>%s-сделка</number></deal_registered_number>
    </underlying_document></underlying_documents>
  </restrict_record></restrict_records>
  <deal_records><deal_record>
    <deal_number>%s-сделка</deal_number>
    <record_info><registration_date>2020-11-10</registration_date></record_info>
    <deal_type><code>560001000000</code><value>Договор участия в долевом строительстве</value></deal_type>
    <deal_parties><deal_party>
      <party_type><code>357003000000</code><value>Участник долевого строительства</value></party_type>
      <individual><name>Иванов Иван Иванович</name></individual>
    </deal_party></deal_parties>
  </deal_record></deal_records>
</extract_contract_participation_share_holdings>`

func renderExtract(regNumber string) string {
	return fmt.Sprintf(extractTemplate,
		regNumber, regNumber, regNumber, regNumber, regNumber)
}

func newTestService(t *testing.T, xmlDir string) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "extracts.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Skipf("Драйвер SQLite недоступен: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Драйвер SQLite недоступен: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	outDir := t.TempDir()
	cfg := &config.Config{}
	cfg.Store.Kind = "sqlite"
	cfg.XMLDir = xmlDir
	cfg.OutputCSV = filepath.Join(outDir, "report.csv")
	cfg.OutputXLSX = filepath.Join(outDir, "report.xlsx")

	repo := repository.NewSQLExtractsRepo(db, "sqlite", logger.NewNop())
	return NewService(cfg, repo, logger.NewNop())
}

func TestRunEndToEnd(t *testing.T) {
	xmlDir := t.TempDir()
	body := "<root>" + renderExtract("КУВИ-001") + renderExtract("КУВИ-002") + "</root>"
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "batch.xml"), []byte(body), 0o644))
	// Файл с другим расширением игнорируется.
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "readme.txt"), []byte("не xml"), 0o644))

	svc := newTestService(t, xmlDir)
	require.NoError(t, svc.Run(context.Background()))

	raw, err := os.ReadFile(svc.cfg.OutputCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	// Заголовок и по одной строке на каждую из двух выписок.
	require.Len(t, records, 3)
	require.Equal(t, ReportColumns, records[0])

	row := records[1]
	require.Equal(t, "50:21:0000000:100", row[colCadNumber])
	require.Equal(t, "ООО «Застройщик»", row[colHolders])
	require.Equal(t, "КУВИ-001-сделка", row[colDealRegNumber])
	require.Equal(t, "Иванов Иван Иванович", row[colParties])
	// Обременение сопоставлено сделке по номеру.
	require.Equal(t, "Да", row[colMortgageFlag])
	require.Equal(t, "КУВИ-001-обр", row[colRestrictionNumber])

	_, err = os.Stat(svc.cfg.OutputXLSX)
	require.NoError(t, err)
}

func TestRunIdempotent(t *testing.T) {
	xmlDir := t.TempDir()
	body := "<root>" + renderExtract("КУВИ-001") + "</root>"
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "batch.xml"), []byte(body), 0o644))

	svc := newTestService(t, xmlDir)
	require.NoError(t, svc.Run(context.Background()))
	// Повторный прогон тех же файлов не плодит дубликатов.
	require.NoError(t, svc.Run(context.Background()))

	raw, err := os.ReadFile(svc.cfg.OutputCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestRunEmptyDirectory(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	// Пустая директория — успешное завершение без выходных файлов.
	require.NoError(t, svc.Run(context.Background()))

	_, err := os.Stat(svc.cfg.OutputCSV)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(svc.cfg.OutputXLSX)
	require.True(t, os.IsNotExist(err))
}

func TestRunMissingDirectory(t *testing.T) {
	svc := newTestService(t, filepath.Join(t.TempDir(), "нет-такой"))
	require.Error(t, svc.Run(context.Background()))
}

func TestRunMalformedFileIsolated(t *testing.T) {
	xmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "битый.xml"),
		[]byte("<root><оборванный"), 0o644))
	body := "<root>" + renderExtract("КУВИ-001") + "</root>"
	require.NoError(t, os.WriteFile(filepath.Join(xmlDir, "целый.xml"), []byte(body), 0o644))

	svc := newTestService(t, xmlDir)
	// Битый файл логируется, остальные обрабатываются.
	require.NoError(t, svc.Run(context.Background()))

	raw, err := os.ReadFile(svc.cfg.OutputCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestListXMLFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<a/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.XML"), []byte("<b/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte(""), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xml"), 0o755))

	files, err := listXMLFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
}
