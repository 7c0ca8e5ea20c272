package service

import (
	"strconv"
	"strings"
	"time"

	"egrn-parser/internal/domain"
)

// Построение плоского отчёта: одна строка на тройку
// (выписка × сделка × сопоставленное обременение).

// ReportColumns фиксированный состав и порядок колонок отчёта.
// Незаполненные ячейки — пустые строки, колонки не опускаются.
var ReportColumns = []string{
	"№",
	"Кадастровый номер ЗУ",
	"Местоположение ЗУ",
	"Категория земель ЗУ",
	"Вид(ы) разрешенного использования ЗУ",
	"Площадь ЗУ (кв. м)",
	"Правообладатель (правообладатели) ЗУ",
	"ИНН правообладателя (правообладателей) ЗУ",
	"Вид государственной регистрации права",
	"Номер государственной регистрации права",
	"Дата государственной регистрации права",
	"Реквизиты договора ДДУ",
	"Дата заключение ДДУ",
	"Номер государственной регистрации ДДУ",
	"Дата государственной регистрации ДДУ",
	"Тип объект ДДУ",
	"Условный номер объекта ДДУ",
	"Этаж расположения объекта ДДУ",
	"Площадь объекта ДДУ (кв. м)",
	"Участники сделки",
	"Признак ипотеки",
	"Банк",
	"ИНН Банка",
	"Номер государственной регистрации обременения / ограничения",
	"Дата государственной регистрации обременения / ограничения",
	"Срок обременения / ограничения",
	"Срок обременения / ограничения (месяцы)",
	"Эскроу счет",
	"Признак уступки ДДУ",
	"Реквизиты договора УДДУ",
	"Дата заключение УДДУ",
	"Номер государственной регистрации УДДУ",
	"Дата государственной регистрации УДДУ",
	"Банк (обременение по УДДУ)",
	"ИНН Банка (обременение по УДДУ)",
	"Номер государственной регистрации обременения УДДУ",
	"Дата государственной регистрации обременения УДДУ",
	"Срок обременения УДДУ (месяцы)",
}

// Индексы колонок отчёта (в порядке ReportColumns).
const (
	colRowNum = iota
	colCadNumber
	colAddress
	colLandCategory
	colPermittedUse
	colLandArea
	colHolders
	colHolderINNs
	colRightType
	colRightNumber
	colRightDate
	colDealContract
	colDealDate
	colDealRegNumber
	colDealRegDate
	colRoomName
	colRoomNumber
	colFloor
	colRoomArea
	colParties
	colMortgageFlag
	colBank
	colBankINN
	colRestrictionNumber
	colRestrictionDate
	colRestrictionPeriod
	colRestrictionMonths
	colEscrow
	colAssignmentFlag
	colAssignContract
	colAssignDate
	colAssignRegNumber
	colAssignRegDate
	colAssignBank
	colAssignBankINN
	colAssignRestrictionNumber
	colAssignRestrictionDate
	colAssignRestrictionMonths
)

const (
	// Подстрока, по которой документ распознаётся как договор уступки.
	assignmentToken = "уступке"
	// Заполнитель колонок УДДУ для сделок без уступки.
	dataAbsent = "данные отсутствуют"
)

// FlattenRecords разворачивает реляционный граф в строки отчёта.
// Выписка без сделок даёт одну строку; сделка даёт по строке на каждое
// обременение с тем же номером сделки, либо одну строку без обременения.
func FlattenRecords(records []domain.MainRecord) [][]string {
	rows := [][]string{}
	for i := range records {
		rows = append(rows, flattenMainRecord(&records[i], len(rows))...)
	}
	return rows
}

func flattenMainRecord(main *domain.MainRecord, offset int) [][]string {
	base := make([]string, len(ReportColumns))

	base[colCadNumber] = main.CadNumber
	base[colAddress] = main.ReadableAddress
	base[colLandCategory] = main.PurposeValue
	base[colPermittedUse] = main.PermittedUseEstablished
	base[colLandArea] = fmtFloat(main.Area)

	// Используется только первое право: в выписках этого вида оно одно.
	if len(main.RightRecords) > 0 {
		right := main.RightRecords[0]
		names := make([]string, 0, len(right.Holders))
		inns := make([]string, 0, len(right.Holders))
		for _, h := range right.Holders {
			if h.Name != "" {
				names = append(names, h.Name)
			}
			if h.INN != "" {
				inns = append(inns, h.INN)
			}
		}
		base[colHolders] = strings.Join(names, "; ")
		base[colHolderINNs] = strings.Join(inns, "; ")
		base[colRightType] = right.RightType
		base[colRightNumber] = right.RightNumber
		base[colRightDate] = fmtDate(right.RegistrationDate)
	}

	if len(main.DealRecords) == 0 {
		row := cloneRow(base)
		row[colRowNum] = strconv.Itoa(offset + 1)
		return [][]string{row}
	}

	rows := [][]string{}
	for i := range main.DealRecords {
		deal := &main.DealRecords[i]
		dealRow := cloneRow(base)
		fillDealColumns(dealRow, deal)
		fillAssignmentColumns(dealRow, deal, main.RestrictRecords)

		matches := matchRestrictions(main.RestrictRecords, deal.DealNumber)
		if len(matches) == 0 {
			dealRow[colMortgageFlag] = "Нет"
			rows = append(rows, dealRow)
			continue
		}
		for _, restrict := range matches {
			row := cloneRow(dealRow)
			fillRestrictionColumns(row, restrict)
			rows = append(rows, row)
		}
	}
	for i, row := range rows {
		row[colRowNum] = strconv.Itoa(offset + i + 1)
	}
	return rows
}

func fillDealColumns(row []string, deal *domain.DealRecord) {
	if primary := primaryDocument(deal.Documents); primary != nil {
		row[colDealContract] = documentRequisites(*primary)
	}
	row[colDealDate] = fmtDate(deal.FirstDDUDate)
	row[colDealRegNumber] = deal.DealNumber
	row[colDealRegDate] = fmtDate(deal.RegistrationDate)
	row[colRoomName] = deal.RoomName
	row[colRoomNumber] = deal.RoomNumber
	row[colFloor] = fmtInt(deal.FloorNumber)
	row[colRoomArea] = fmtFloat(deal.RoomArea)

	names := make([]string, 0, len(deal.Parties))
	for _, p := range deal.Parties {
		// В отчёт попадает только имя участника, в том числе для юрлиц.
		if p.Info.Name != "" {
			names = append(names, p.Info.Name)
		}
	}
	row[colParties] = strings.Join(names, "; ")

	row[colBank] = deal.Bank
	row[colBankINN] = deal.BankINN
}

// fillAssignmentColumns обрабатывает документы уступки. Сделка без
// документа об уступке получает признак "Нет" и явный заполнитель в
// колонках УДДУ. Для первой найденной уступки выполняется поиск
// обременения, в документах которого есть совпадение по тройке
// (вид, наименование, номер): оно даёт вторичные колонки обременения.
// Уступка без совпадения оставляет признак "Да", вторичные колонки пустыми.
func fillAssignmentColumns(row []string, deal *domain.DealRecord, restricts []domain.RestrictRecord) {
	assign := assignmentDocument(deal.Documents)
	if assign == nil {
		row[colAssignmentFlag] = "Нет"
		row[colAssignContract] = dataAbsent
		row[colAssignDate] = dataAbsent
		row[colAssignRegNumber] = dataAbsent
		row[colAssignRegDate] = dataAbsent
		return
	}

	row[colAssignmentFlag] = "Да"
	row[colAssignContract] = documentRequisites(*assign)
	row[colAssignDate] = assign.Date
	row[colAssignRegNumber] = assign.DealNumber
	row[colAssignRegDate] = assign.DealDate

	for i := range restricts {
		restrict := &restricts[i]
		if !containsDocument(restrict.Documents, assign) {
			continue
		}
		row[colAssignBank] = restrict.Bank
		row[colAssignBankINN] = restrict.BankINN
		row[colAssignRestrictionNumber] = restrict.RestrictionNumber
		row[colAssignRestrictionDate] = fmtDate(restrict.RegistrationDate)
		row[colAssignRestrictionMonths] = fmtInt(restrict.DurationMonths)
		return
	}
}

func fillRestrictionColumns(row []string, restrict *domain.RestrictRecord) {
	if restrict.RestrictionNumber != "" {
		row[colMortgageFlag] = "Да"
	} else {
		row[colMortgageFlag] = "Нет"
	}
	if restrict.Bank != "" {
		row[colBank] = restrict.Bank
	}
	if restrict.BankINN != "" {
		row[colBankINN] = restrict.BankINN
	}
	row[colRestrictionNumber] = restrict.RestrictionNumber
	row[colRestrictionDate] = fmtDate(restrict.RegistrationDate)
	row[colRestrictionPeriod] = restrict.GuaranteePeriod
	row[colRestrictionMonths] = fmtInt(restrict.DurationMonths)
}

// matchRestrictions сопоставляет обременения сделке по точному равенству
// номера сделки. Ноль, одно и несколько совпадений одинаково допустимы.
func matchRestrictions(restricts []domain.RestrictRecord, dealNumber string) []*domain.RestrictRecord {
	matches := []*domain.RestrictRecord{}
	for i := range restricts {
		if restricts[i].DealNumber == dealNumber {
			matches = append(matches, &restricts[i])
		}
	}
	return matches
}

// primaryDocument первый документ, не являющийся договором уступки.
func primaryDocument(docs []domain.Document) *domain.Document {
	for i := range docs {
		if !strings.Contains(docs[i].Value, assignmentToken) {
			return &docs[i]
		}
	}
	return nil
}

// assignmentDocument первый документ об уступке прав по ДДУ.
func assignmentDocument(docs []domain.Document) *domain.Document {
	for i := range docs {
		if strings.Contains(docs[i].Value, assignmentToken) {
			return &docs[i]
		}
	}
	return nil
}

// containsDocument ищет совпадение по тройке (вид, наименование, номер).
func containsDocument(docs []domain.Document, target *domain.Document) bool {
	for _, d := range docs {
		if d.Value == target.Value && d.Name == target.Name && d.Number == target.Number {
			return true
		}
	}
	return false
}

// documentRequisites собирает реквизиты документа в одну строку.
func documentRequisites(doc domain.Document) string {
	parts := []string{}
	if doc.Name != "" {
		parts = append(parts, doc.Name)
	} else if doc.Value != "" {
		parts = append(parts, doc.Value)
	}
	if doc.Number != "" {
		parts = append(parts, "№"+doc.Number)
	}
	if doc.Date != "" {
		parts = append(parts, "от "+doc.Date)
	}
	return strings.Join(parts, " ")
}

func cloneRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func fmtInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
