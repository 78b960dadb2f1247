package domain

import (
	"strings"

	"github.com/m04kA/SMC-BranchDirectory/pkg/types"
)

// DayOfWeek день недели в нумерации ISO (Monday = 1 ... Sunday = 7)
type DayOfWeek int

const (
	Monday DayOfWeek = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllDays дни недели в каноническом порядке
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = map[DayOfWeek]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// dayAliases таблица названий дней из фида (ключи в нижнем регистре)
var dayAliases = map[string]DayOfWeek{
	// English
	"monday": Monday, "mon": Monday, "mo": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "tues": Tuesday, "tu": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday, "we": Wednesday,
	"thursday": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday, "th": Thursday,
	"friday": Friday, "fri": Friday, "fr": Friday,
	"saturday": Saturday, "sat": Saturday, "sa": Saturday,
	"sunday": Sunday, "sun": Sunday, "su": Sunday,

	// Українська
	"понеділок": Monday, "пн": Monday,
	"вівторок": Tuesday, "вт": Tuesday,
	"середа": Wednesday, "ср": Wednesday,
	"четвер": Thursday, "чт": Thursday,
	"п'ятниця": Friday, "пт": Friday,
	"субота": Saturday, "сб": Saturday,
	"неділя": Sunday, "нд": Sunday,

	// Русский
	"понедельник": Monday,
	"вторник":     Tuesday,
	"среда":       Wednesday,
	"четверг":     Thursday,
	"пятница":     Friday,
	"суббота":     Saturday,
	"воскресенье": Sunday, "вс": Sunday,

	// ISO
	"1": Monday, "2": Tuesday, "3": Wednesday, "4": Thursday,
	"5": Friday, "6": Saturday, "7": Sunday,
}

var apostropheReplacer = strings.NewReplacer("’", "'", "ʼ", "'", "`", "'", "‘", "'")

// ParseDayOfWeek сопоставляет название дня из фида с DayOfWeek
// Регистр, пробелы по краям и точка в конце ("Пн.") не учитываются
func ParseDayOfWeek(name string) (DayOfWeek, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, ".")
	key = apostropheReplacer.Replace(key)

	day, ok := dayAliases[key]
	return day, ok
}

// IsValid возвращает true для дней Monday..Sunday
func (d DayOfWeek) IsValid() bool {
	return d >= Monday && d <= Sunday
}

func (d DayOfWeek) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return "Unknown"
}

// TimeRange интервал времени внутри суток
// From > To допустим только для ночных смен
type TimeRange struct {
	From types.TimeString
	To   types.TimeString
}

// IsOvernight возвращает true, если интервал переходит через полночь
func (r TimeRange) IsOvernight() bool {
	return r.From.IsAfter(r.To)
}

// Minutes возвращает границы интервала в минутах от начала суток
// Для ночного интервала конец сдвигается на сутки вперед
func (r TimeRange) Minutes() (start, end int, err error) {
	start, err = r.From.Minutes()
	if err != nil {
		return 0, 0, err
	}
	end, err = r.To.Minutes()
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		end += 24 * 60
	}
	return start, end, nil
}

// Break перерыв внутри рабочего дня
type Break struct {
	From types.TimeString
	To   types.TimeString
}

// Range возвращает перерыв как TimeRange
func (b Break) Range() TimeRange {
	return TimeRange{From: b.From, To: b.To}
}

// WorkingDay рабочий день с часами работы и перерывами
type WorkingDay struct {
	Day    DayOfWeek
	Hours  TimeRange
	Breaks []Break
}

// Schedule недельное расписание рабочего места (workstation)
// Дни уникальны и упорядочены с понедельника
type Schedule struct {
	Workstation string
	Days        []WorkingDay
}

// Day возвращает рабочий день по дню недели
func (s Schedule) Day(d DayOfWeek) (WorkingDay, bool) {
	for _, wd := range s.Days {
		if wd.Day == d {
			return wd, true
		}
	}
	return WorkingDay{}, false
}

func cloneWorkingDays(days []WorkingDay) []WorkingDay {
	if days == nil {
		return nil
	}
	out := make([]WorkingDay, len(days))
	for i, d := range days {
		out[i] = d
		if d.Breaks != nil {
			out[i].Breaks = append([]Break(nil), d.Breaks...)
		}
	}
	return out
}
