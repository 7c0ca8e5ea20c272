package domain

// Сериализуемые вложенные структуры. Хранятся в текстовых колонках как JSON:
// это полезная нагрузка записей, по ним не строятся запросы.

// Holder правообладатель земельного участка.
type Holder struct {
	Name string `json:"name"` // Наименование
	INN  string `json:"inn"`  // ИНН
	OGRN string `json:"ogrn"` // ОГРН
}

// Document документ-основание (underlying_document).
type Document struct {
	Code        string `json:"doc_code"`
	Value       string `json:"doc_value"` // Наименование вида документа
	Name        string `json:"doc_name"`
	Number      string `json:"doc_number"`
	Date        string `json:"doc_date"`
	DealNumber  string `json:"deal_number"` // Номер зарегистрированной сделки
	RightNumber string `json:"right_number"`
	DealDate    string `json:"deal_date"`  // Дата регистрации сделки
	DealOrgan   string `json:"deal_organ"` // Орган регистрации сделки
}

// Виды участника сделки в PartyInfo.
const (
	PartyIndividual  = "individual"
	PartyLegalEntity = "legal_entity"
)

// PartyInfo сведения об участнике сделки: физическое либо юридическое лицо.
// Пустой Kind означает, что вид участника не распознан.
type PartyInfo struct {
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	INN            string `json:"inn,omitempty"`
	OGRN           string `json:"ogrn,omitempty"`
	MailingAddress string `json:"mailing_address,omitempty"`
}
