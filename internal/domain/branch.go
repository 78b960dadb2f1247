package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// BranchType тип точки обслуживания
type BranchType string

const (
	BranchTypeDepartment BranchType = "Department"
	BranchTypeAtm        BranchType = "Atm"
	BranchTypeTerminal   BranchType = "Terminal"
)

// IsValid возвращает true для известных типов
func (t BranchType) IsValid() bool {
	switch t {
	case BranchTypeDepartment, BranchTypeAtm, BranchTypeTerminal:
		return true
	}
	return false
}

// ParseBranchType разбирает тип из API (без учета регистра)
func ParseBranchType(s string) (BranchType, bool) {
	for _, t := range []BranchType{BranchTypeDepartment, BranchTypeAtm, BranchTypeTerminal} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// Address адрес точки обслуживания (value object)
// Координаты (0, 0) означают, что местоположение неизвестно
type Address struct {
	BaseCity        string
	City            string
	DetailedAddress *string
	FullAddress     string
	Latitude        float64
	Longitude       float64
}

// HasLocation возвращает true, если координаты известны
func (a Address) HasLocation() bool {
	return a.Latitude != 0 || a.Longitude != 0
}

// Equal структурное сравнение адресов
func (a Address) Equal(other Address) bool {
	if (a.DetailedAddress == nil) != (other.DetailedAddress == nil) {
		return false
	}
	if a.DetailedAddress != nil && *a.DetailedAddress != *other.DetailedAddress {
		return false
	}
	return a.BaseCity == other.BaseCity &&
		a.City == other.City &&
		a.FullAddress == other.FullAddress &&
		a.Latitude == other.Latitude &&
		a.Longitude == other.Longitude
}

// ContactPhone телефон отделения
type ContactPhone struct {
	OperatorCode string
	Number       string
}

// FullNumber номер целиком ("67 1234567"), в хранилище не пишется
func (p ContactPhone) FullNumber() string {
	if p.OperatorCode == "" {
		return p.Number
	}
	return p.OperatorCode + " " + p.Number
}

// CashDesk касса внутри отделения
// ExternalID уникален только в пределах своего отделения
type CashDesk struct {
	ExternalID  int64
	Description string
	Days        []WorkingDay
}

// Branch точка обслуживания банка (корень агрегата)
type Branch struct {
	ID                int64 // назначается хранилищем
	ExternalID        int64 // departmentId из фида
	Name              string
	Type              BranchType
	IsTemporaryClosed bool
	IsRegular         bool
	Address           Address
	ExtraServices     []string
	Schedules         []Schedule
	Phones            []ContactPhone
	CashDesks         []CashDesk

	// Payload исходная запись фида байт в байт
	Payload json.RawMessage

	LastUpdated time.Time
}

// Schedule возвращает расписание по метке рабочего места
func (b *Branch) Schedule(workstation string) (Schedule, bool) {
	for _, s := range b.Schedules {
		if s.Workstation == workstation {
			return s, true
		}
	}
	return Schedule{}, false
}

// Clone возвращает глубокую копию агрегата
func (b *Branch) Clone() *Branch {
	if b == nil {
		return nil
	}

	out := *b

	if b.Address.DetailedAddress != nil {
		detailed := *b.Address.DetailedAddress
		out.Address.DetailedAddress = &detailed
	}
	if b.ExtraServices != nil {
		out.ExtraServices = append([]string(nil), b.ExtraServices...)
	}
	if b.Schedules != nil {
		out.Schedules = make([]Schedule, len(b.Schedules))
		for i, s := range b.Schedules {
			out.Schedules[i] = Schedule{Workstation: s.Workstation, Days: cloneWorkingDays(s.Days)}
		}
	}
	if b.Phones != nil {
		out.Phones = append([]ContactPhone(nil), b.Phones...)
	}
	if b.CashDesks != nil {
		out.CashDesks = make([]CashDesk, len(b.CashDesks))
		for i, c := range b.CashDesks {
			out.CashDesks[i] = CashDesk{ExternalID: c.ExternalID, Description: c.Description, Days: cloneWorkingDays(c.Days)}
		}
	}
	if b.Payload != nil {
		out.Payload = append(json.RawMessage(nil), b.Payload...)
	}

	return &out
}

// BranchFilter фильтр списка отделений
type BranchFilter struct {
	Type          *BranchType // nil - все типы
	BaseCity      *string     // nil - все города
	IncludeClosed bool        // включать временно закрытые
}

// Matches проверяет, подходит ли отделение под фильтр
func (f BranchFilter) Matches(b *Branch) bool {
	if f.Type != nil && b.Type != *f.Type {
		return false
	}
	if f.BaseCity != nil && b.Address.BaseCity != *f.BaseCity {
		return false
	}
	if !f.IncludeClosed && b.IsTemporaryClosed {
		return false
	}
	return true
}
