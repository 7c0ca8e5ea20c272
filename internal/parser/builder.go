package parser

import (
	"time"

	"egrn-parser/internal/domain"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Сборка одной выписки из верхнеуровневого элемента
// extract_contract_participation_share_holdings. Здесь только форма записей;
// единственная перекрёстная связь — копирование номера сделки из документов
// обременения в RestrictRecord.DealNumber.

// BuildExtract собирает все разделы выписки в одну связную запись,
// готовую к сохранению.
func BuildExtract(el *etree.Element, sourceFile string, log *zap.Logger) *domain.MainRecord {
	rec := &domain.MainRecord{
		SourceFile: sourceFile,
		ParsedAt:   time.Now().UTC(),
	}
	buildDetailsStatement(el, rec, log)
	buildDetailsRequest(el, rec, log)
	buildLandRecord(el, rec, log)
	rec.RightRecords = buildRightRecords(el, log)
	rec.RestrictRecords = buildRestrictRecords(el, log)
	rec.DealRecords = buildDealRecords(el, log)
	return rec
}

func buildDetailsStatement(el *etree.Element, rec *domain.MainRecord, log *zap.Logger) {
	details := el.FindElement(".//details_statement")
	if details == nil {
		return
	}
	rec.OrganRegistrRights = text(details, ".//organ_registr_rights")
	rec.DateFormation = dateField(details, ".//date_formation", "date_formation", log)
	rec.RegistrationNumber = text(details, ".//registration_number")
}

func buildDetailsRequest(el *etree.Element, rec *domain.MainRecord, log *zap.Logger) {
	details := el.FindElement(".//details_request")
	if details == nil {
		return
	}
	rec.DateReceivedRequest = dateField(details, ".//date_received_request", "date_received_request", log)
	rec.DateReceiptRequestRegAuthorityRights = dateField(details,
		".//date_receipt_request_reg_authority_rights", "date_receipt_request_reg_authority_rights", log)
}

func buildLandRecord(el *etree.Element, rec *domain.MainRecord, log *zap.Logger) {
	land := el.FindElement(".//land_record")
	if land == nil {
		log.Warn("Раздел land_record отсутствует в выписке")
		return
	}
	rec.CadNumber = text(land, ".//object/common_data/cad_number")
	rec.ReadableAddress = text(land, ".//address_location/address/readable_address")
	rec.PurposeCode = text(land, ".//params/category/type/code")
	rec.PurposeValue = text(land, ".//params/category/type/value")
	rec.PermittedUseCode = text(land, ".//params/permitted_use/permitted_use_established/code")
	rec.PermittedUseEstablished = text(land, ".//params/permitted_use/permitted_use_established/by_document")
	rec.Area = floatField(land, ".//params/area/value", "area", log)
}

func buildRightRecords(el *etree.Element, log *zap.Logger) []domain.RightRecord {
	records := []domain.RightRecord{}
	for _, rightEl := range el.FindElements(".//right_records/right_record") {
		rec := domain.RightRecord{
			RegistrationDate: dateField(rightEl, ".//record_info/registration_date", "registration_date", log),
			RightNumber:      text(rightEl, ".//right_data/right_number"),
			RightTypeCode:    text(rightEl, ".//right_data/right_type/code"),
			RightType:        text(rightEl, ".//right_data/right_type/value"),
			Documents:        buildDocuments(rightEl),
		}
		rec.Holders = []domain.Holder{}
		for _, holderEl := range rightEl.FindElements(".//right_holders/right_holder") {
			rec.Holders = append(rec.Holders, domain.Holder{
				Name: text(holderEl, ".//legal_entity/entity/resident/name"),
				INN:  text(holderEl, ".//legal_entity/entity/resident/inn"),
				OGRN: text(holderEl, ".//legal_entity/entity/resident/ogrn"),
			})
		}
		records = append(records, rec)
	}
	return records
}

func buildRestrictRecords(el *etree.Element, log *zap.Logger) []domain.RestrictRecord {
	records := []domain.RestrictRecord{}
	for _, restrictEl := range el.FindElements(".//restrict_records/restrict_record") {
		data := ".//restrictions_encumbrances_data"
		rec := domain.RestrictRecord{
			RestrictionNumber:   text(restrictEl, data+"/restriction_encumbrance_number"),
			RestrictionTypeCode: text(restrictEl, data+"/restriction_encumbrance_type/code"),
			RestrictionType:     text(restrictEl, data+"/restriction_encumbrance_type/value"),
			StartDate:           dateField(restrictEl, data+"/period/period_info/start_date", "start_date", log),
			DealValidityTime:    text(restrictEl, data+"/period/period_info/deal_validity_time"),
			TransferDeadline:    text(restrictEl, data+"/period/period_info/transfer_deadline"),
			GuaranteePeriod:     text(restrictEl, data+"/period/period_info/guarantee_period"),
			Bank:                text(restrictEl, ".//right_holders/right_holder/legal_entity/entity/resident/name"),
			BankINN:             text(restrictEl, ".//right_holders/right_holder/legal_entity/entity/resident/inn"),
			RegistrationDate:    dateField(restrictEl, ".//record_info/registration_date", "registration_date", log),
			Documents:           buildDocuments(restrictEl),
		}
		rec.DurationMonths = durationMonths(rec.DealValidityTime)
		// Первый документ с номером сделки связывает обременение со сделкой.
		for _, doc := range rec.Documents {
			if doc.DealNumber != "" {
				rec.DealNumber = doc.DealNumber
				break
			}
		}
		records = append(records, rec)
	}
	return records
}

func buildDealRecords(el *etree.Element, log *zap.Logger) []domain.DealRecord {
	records := []domain.DealRecord{}
	for _, dealEl := range el.FindElements(".//deal_records/deal_record") {
		subject := ".//deal_data/subject/share_subject_description"
		room := subject + "/house_descriptions/house_description/room_descriptions/room_description"
		rec := domain.DealRecord{
			DealNumber:       text(dealEl, ".//deal_number"),
			RegistrationDate: dateField(dealEl, ".//record_info/registration_date", "registration_date", log),
			DealTypeCode:     text(dealEl, ".//deal_type/code"),
			DealTypeValue:    text(dealEl, ".//deal_type/value"),
			FirstDDUDate: dateField(dealEl,
				subject+"/house_descriptions/house_description/first_ddu_date", "first_ddu_date", log),
			RoomName:         text(dealEl, room+"/room_name"),
			RoomNumber:       text(dealEl, room+"/room_number"),
			FloorNumber:      intField(dealEl, room+"/floor_number", "floor_number", log),
			RoomArea:         floatField(dealEl, room+"/room_area", "room_area", log),
			Bank:             text(dealEl, subject+"/bank"),
			BankINN:          text(dealEl, subject+"/bank_inn"),
			GuaranteePeriod:  text(dealEl, room+"/guarantee_period"),
			TransferDeadline: text(dealEl, room+"/transfer_deadline"),
			Documents:        buildDocuments(dealEl),
			Parties:          buildDealParties(dealEl),
		}
		records = append(records, rec)
	}
	return records
}

func buildDealParties(dealEl *etree.Element) []domain.DealParty {
	parties := []domain.DealParty{}
	for _, partyEl := range dealEl.FindElements(".//deal_parties/deal_party") {
		party := domain.DealParty{
			ConcessionMark: text(partyEl, ".//concession_mark"),
			PartyTypeCode:  text(partyEl, ".//party_type/code"),
			PartyTypeValue: text(partyEl, ".//party_type/value"),
			Info:           buildPartyInfo(partyEl),
		}
		parties = append(parties, party)
	}
	return parties
}

// buildPartyInfo различает физическое и юридическое лицо по наличию
// соответствующего поддерева; ни того, ни другого — пустой Kind.
func buildPartyInfo(partyEl *etree.Element) domain.PartyInfo {
	if ind := partyEl.FindElement(".//individual"); ind != nil {
		return domain.PartyInfo{
			Kind: domain.PartyIndividual,
			Name: text(ind, ".//name"),
		}
	}
	if legal := partyEl.FindElement(".//legal_entity"); legal != nil {
		return domain.PartyInfo{
			Kind:           domain.PartyLegalEntity,
			Name:           text(legal, ".//entity/resident/name"),
			INN:            text(legal, ".//entity/resident/inn"),
			OGRN:           text(legal, ".//entity/resident/ogrn"),
			MailingAddress: text(legal, ".//entity/resident/mailing_address"),
		}
	}
	return domain.PartyInfo{}
}

// buildDocuments собирает documents из любого раздела; даты остаются
// строками, как в исходном XML.
func buildDocuments(el *etree.Element) []domain.Document {
	docs := []domain.Document{}
	for _, docEl := range el.FindElements(".//underlying_documents/underlying_document") {
		docs = append(docs, domain.Document{
			Code:        text(docEl, ".//document_code/code"),
			Value:       text(docEl, ".//document_code/value"),
			Name:        text(docEl, "document_name"),
			Number:      text(docEl, "document_number"),
			Date:        text(docEl, "document_date"),
			DealNumber:  text(docEl, ".//deal_registered_number/number"),
			RightNumber: text(docEl, ".//deal_registered_number/right_number"),
			DealDate:    text(docEl, ".//deal_registered_date"),
			DealOrgan:   text(docEl, ".//deal_registered_organ"),
		})
	}
	return docs
}
