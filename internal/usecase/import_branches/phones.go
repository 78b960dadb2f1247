package import_branches

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

var errInvalidPhone = errors.New("invalid phone number")

// PhoneParser разбирает телефоны фида на код оператора и абонентский номер
type PhoneParser struct {
	region string
}

// NewPhoneParser создает парсер с регионом по умолчанию для номеров без "+"
func NewPhoneParser(region string) *PhoneParser {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = domain.DefaultPhoneRegion
	}
	return &PhoneParser{region: region}
}

// Parse возвращает ContactPhone или errInvalidPhone
func (p *PhoneParser) Parse(raw string) (domain.ContactPhone, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ContactPhone{}, errInvalidPhone
	}

	num, err := phonenumbers.Parse(raw, p.region)
	if err != nil {
		return domain.ContactPhone{}, errInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return domain.ContactPhone{}, errInvalidPhone
	}

	national := phonenumbers.GetNationalSignificantNumber(num)
	ndcLen := phonenumbers.GetLengthOfNationalDestinationCode(num)
	if ndcLen <= 0 || ndcLen >= len(national) {
		return domain.ContactPhone{Number: national}, nil
	}

	return domain.ContactPhone{
		OperatorCode: national[:ndcLen],
		Number:       national[ndcLen:],
	}, nil
}
