package import_branches

import "encoding/json"

// Модели фида отделений
// encoding/json сопоставляет имена полей без учета регистра,
// поэтому departmentName и DepartmentName разбираются одинаково

type feedRoot struct {
	List []json.RawMessage `json:"list"`
}

type departmentRecord struct {
	DepartmentID      int64               `json:"departmentId"`
	DepartmentType    string              `json:"departmentType"`
	DepartmentName    string              `json:"departmentName" validate:"notblank"`
	IsTemporaryClosed bool                `json:"isTemporaryClosed"`
	IsRegular         bool                `json:"isRegular"`
	FullAddress       string              `json:"fullAddress"`
	Address           *addressDTO         `json:"address"`
	ExtraServices     []string            `json:"extraServices"`
	TimeTables        []timeTableDTO      `json:"timeTables" validate:"dive"`
	CashDepartments   []cashDepartmentDTO `json:"cashDepartments" validate:"dive"`
	Phones            []string            `json:"phones"`
}

type addressDTO struct {
	BaseCity        string          `json:"baseCity"`
	City            string          `json:"city"`
	DetailedAddress *string         `json:"detailedAddress"`
	GeoLocation     *geoLocationDTO `json:"geoLocation"`
}

type geoLocationDTO struct {
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Long float64 `json:"long" validate:"gte=-180,lte=180"`
}

type timeTableDTO struct {
	Workstation string       `json:"workstation"`
	WorkDays    []workDayDTO `json:"workDays"`
}

type workDayDTO struct {
	WorkingDay string     `json:"workingDay"`
	WorkFrom   string     `json:"workFrom"`
	WorkTo     string     `json:"workTo"`
	Breaks     []breakDTO `json:"breaks"`
}

type cashDepartmentDTO struct {
	CashID          int64        `json:"cashId"`
	CashDescription string       `json:"cashDescription"`
	WorkDays        []cashDayDTO `json:"workDays"`
}

type cashDayDTO struct {
	DayOfWeek string     `json:"dayOfWeek"`
	WorkFrom  string     `json:"workFrom"`
	WorkTo    string     `json:"workTo"`
	Breaks    []breakDTO `json:"breaks"`
}

type breakDTO struct {
	BreakFrom string `json:"breakFrom"`
	BreakTo   string `json:"breakTo"`
}

func toRawBreaks(in []breakDTO) []RawBreak {
	if len(in) == 0 {
		return nil
	}
	out := make([]RawBreak, len(in))
	for i, b := range in {
		out[i] = RawBreak{From: b.BreakFrom, To: b.BreakTo}
	}
	return out
}

func (d workDayDTO) toRaw() RawWorkDay {
	return RawWorkDay{DayName: d.WorkingDay, From: d.WorkFrom, To: d.WorkTo, Breaks: toRawBreaks(d.Breaks)}
}

func (d cashDayDTO) toRaw() RawWorkDay {
	return RawWorkDay{DayName: d.DayOfWeek, From: d.WorkFrom, To: d.WorkTo, Breaks: toRawBreaks(d.Breaks)}
}

func workDaysToRaw(in []workDayDTO) []RawWorkDay {
	out := make([]RawWorkDay, len(in))
	for i, d := range in {
		out[i] = d.toRaw()
	}
	return out
}

func cashDaysToRaw(in []cashDayDTO) []RawWorkDay {
	out := make([]RawWorkDay, len(in))
	for i, d := range in {
		out[i] = d.toRaw()
	}
	return out
}
