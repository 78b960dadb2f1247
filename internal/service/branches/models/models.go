package models

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

var (
	// ErrInvalidBranchType возвращается при неизвестном типе отделения в фильтре
	ErrInvalidBranchType = errors.New("invalid branch type")
)

// Request модели

// ListBranchesRequest запрос на получение списка отделений
type ListBranchesRequest struct {
	Type          *string `json:"type,omitempty"`
	City          *string `json:"city,omitempty"`
	IncludeClosed bool    `json:"includeClosed"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBranchesRequest) ToDomainFilter() (domain.BranchFilter, error) {
	filter := domain.BranchFilter{IncludeClosed: r.IncludeClosed}

	if r.Type != nil && strings.TrimSpace(*r.Type) != "" {
		t, ok := domain.ParseBranchType(*r.Type)
		if !ok {
			return filter, ErrInvalidBranchType
		}
		filter.Type = &t
	}

	if r.City != nil {
		if city := strings.TrimSpace(*r.City); city != "" {
			filter.BaseCity = &city
		}
	}

	return filter, nil
}

// CacheKey ключ кеша для фильтра
func CacheKey(filter domain.BranchFilter) string {
	key := "type=*"
	if filter.Type != nil {
		key = "type=" + string(*filter.Type)
	}
	if filter.BaseCity != nil {
		key += ":city=" + *filter.BaseCity
	} else {
		key += ":city=*"
	}
	if filter.IncludeClosed {
		key += ":closed=1"
	} else {
		key += ":closed=0"
	}
	return key
}

// UpdateStatusRequest запрос на смену флага временного закрытия
type UpdateStatusRequest struct {
	IsTemporaryClosed *bool `json:"isTemporaryClosed"`
}

// Response модели

// AddressResponse адрес отделения
type AddressResponse struct {
	BaseCity        string  `json:"baseCity"`
	City            string  `json:"city"`
	DetailedAddress *string `json:"detailedAddress,omitempty"`
	FullAddress     string  `json:"fullAddress"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
}

// BreakResponse перерыв
type BreakResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WorkingDayResponse рабочий день
type WorkingDayResponse struct {
	Day    string          `json:"day"` // "Monday"
	From   string          `json:"from"`
	To     string          `json:"to"`
	Breaks []BreakResponse `json:"breaks"`
}

// ScheduleResponse расписание рабочего места
type ScheduleResponse struct {
	Workstation string               `json:"workstation"`
	Days        []WorkingDayResponse `json:"days"`
}

// PhoneResponse телефон отделения
type PhoneResponse struct {
	OperatorCode string `json:"operatorCode"`
	Number       string `json:"number"`
	FullNumber   string `json:"fullNumber"`
}

// CashDeskResponse касса
type CashDeskResponse struct {
	CashID      int64                `json:"cashId"`
	Description string               `json:"description"`
	Days        []WorkingDayResponse `json:"days"`
}

// BranchResponse ответ с данными отделения
type BranchResponse struct {
	ID                int64              `json:"id"`
	ExternalID        int64              `json:"departmentId"`
	Name              string             `json:"name"`
	Type              string             `json:"type"`
	IsTemporaryClosed bool               `json:"isTemporaryClosed"`
	IsRegular         bool               `json:"isRegular"`
	Address           AddressResponse    `json:"address"`
	ExtraServices     []string           `json:"extraServices"`
	Schedules         []ScheduleResponse `json:"schedules"`
	Phones            []PhoneResponse    `json:"phones"`
	CashDesks         []CashDeskResponse `json:"cashDesks"`
	DataJSON          string             `json:"dataJson"` // исходная запись фида
	LastUpdated       time.Time          `json:"lastUpdated"`
}

// BranchListResponse список отделений
type BranchListResponse struct {
	Branches []BranchResponse `json:"branches"`
	Total    int              `json:"total"`
}

// CitiesResponse список базовых городов
type CitiesResponse struct {
	Cities []string `json:"cities"`
}

// Функции конвертации

// FromDomainBranch конвертирует domain.Branch в BranchResponse
func FromDomainBranch(b *domain.Branch) BranchResponse {
	resp := BranchResponse{
		ID:                b.ID,
		ExternalID:        b.ExternalID,
		Name:              b.Name,
		Type:              string(b.Type),
		IsTemporaryClosed: b.IsTemporaryClosed,
		IsRegular:         b.IsRegular,
		Address: AddressResponse{
			BaseCity:        b.Address.BaseCity,
			City:            b.Address.City,
			DetailedAddress: b.Address.DetailedAddress,
			FullAddress:     b.Address.FullAddress,
			Latitude:        b.Address.Latitude,
			Longitude:       b.Address.Longitude,
		},
		ExtraServices: make([]string, 0, len(b.ExtraServices)),
		Schedules:     make([]ScheduleResponse, 0, len(b.Schedules)),
		Phones:        make([]PhoneResponse, 0, len(b.Phones)),
		CashDesks:     make([]CashDeskResponse, 0, len(b.CashDesks)),
		DataJSON:      string(b.Payload),
		LastUpdated:   b.LastUpdated,
	}

	resp.ExtraServices = append(resp.ExtraServices, b.ExtraServices...)

	for _, s := range b.Schedules {
		resp.Schedules = append(resp.Schedules, ScheduleResponse{
			Workstation: s.Workstation,
			Days:        fromDomainDays(s.Days),
		})
	}

	for _, p := range b.Phones {
		resp.Phones = append(resp.Phones, PhoneResponse{
			OperatorCode: p.OperatorCode,
			Number:       p.Number,
			FullNumber:   p.FullNumber(),
		})
	}

	for _, c := range b.CashDesks {
		resp.CashDesks = append(resp.CashDesks, CashDeskResponse{
			CashID:      c.ExternalID,
			Description: c.Description,
			Days:        fromDomainDays(c.Days),
		})
	}

	return resp
}

// FromDomainBranchList конвертирует список отделений
func FromDomainBranchList(branches []*domain.Branch) *BranchListResponse {
	resp := &BranchListResponse{
		Branches: make([]BranchResponse, 0, len(branches)),
		Total:    len(branches),
	}
	for _, b := range branches {
		resp.Branches = append(resp.Branches, FromDomainBranch(b))
	}
	return resp
}

func fromDomainDays(days []domain.WorkingDay) []WorkingDayResponse {
	out := make([]WorkingDayResponse, 0, len(days))
	for _, d := range days {
		breaks := make([]BreakResponse, 0, len(d.Breaks))
		for _, br := range d.Breaks {
			breaks = append(breaks, BreakResponse{From: br.From.String(), To: br.To.String()})
		}
		out = append(out, WorkingDayResponse{
			Day:    d.Day.String(),
			From:   d.Hours.From.String(),
			To:     d.Hours.To.String(),
			Breaks: breaks,
		})
	}
	return out
}
