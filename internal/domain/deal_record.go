package domain

import "time"

// DealRecord сделка участия в долевом строительстве (таблица deal_records).
// Владеет участниками сделки; удаление каскадное.
type DealRecord struct {
	ID           int64 `db:"id"`
	MainRecordID int64 `db:"main_record_id"`

	DealNumber       string     `db:"deal_number"`       // Номер сделки, UNIQUE
	RegistrationDate *time.Time `db:"registration_date"` // Дата государственной регистрации сделки
	DealTypeCode     string     `db:"deal_type_code"`    // Код вида сделки
	DealTypeValue    string     `db:"deal_type_value"`   // Вид сделки
	FirstDDUDate     *time.Time `db:"first_ddu_date"`    // Дата заключения ДДУ

	RoomName    string   `db:"room_name"`    // Тип объекта ДДУ
	RoomNumber  string   `db:"room_number"`  // Условный номер объекта ДДУ
	FloorNumber *int     `db:"floor_number"` // Этаж расположения объекта ДДУ
	RoomArea    *float64 `db:"room_area"`    // Площадь объекта ДДУ (кв. м)

	Bank             string `db:"bank"`              // Банк
	BankINN          string `db:"bank_inn"`          // ИНН банка
	GuaranteePeriod  string `db:"guarantee_period"`  // Срок обременения/ограничения
	TransferDeadline string `db:"transfer_deadline"` // Признак ипотеки

	Documents []Document `db:"-"` // Документы-основания, в БД — JSON
	Parties   []DealParty
}

// DealParty участник сделки (таблица deal_parties).
// Дедупликация не выполняется: у участника нет натурального ключа.
type DealParty struct {
	ID           int64 `db:"id"`
	DealRecordID int64 `db:"deal_record_id"`

	ConcessionMark string `db:"concession_mark"` // Отметка об уступке
	PartyTypeCode  string `db:"party_type_code"` // Код вида участника
	PartyTypeValue string `db:"party_type_value"`

	Info PartyInfo `db:"-"` // Сведения об участнике, в БД — JSON
}
