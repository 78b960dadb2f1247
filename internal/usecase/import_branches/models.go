package import_branches

import "github.com/m04kA/SMC-BranchDirectory/internal/domain"

// Request модель запроса на импорт
type Request struct {
	Payload []byte // Содержимое фида {"list": [...]}
	Source  string // Источник: upload или feed
}

// Response итог импорта
type Response struct {
	domain.ImportReport
	Stored int // Отделений записано в хранилище
}

// RawBreak перерыв в том виде, в котором он пришел из фида
type RawBreak struct {
	From string
	To   string
}

// RawWorkDay день расписания в общем виде
// И workingDay отделения, и dayOfWeek кассы приводятся к нему
type RawWorkDay struct {
	DayName string
	From    string
	To      string
	Breaks  []RawBreak
}

// SchedulePolicy настройки построения расписаний
type SchedulePolicy struct {
	// AllowOvernight разрешает рабочие дни через полночь (22:00-06:00)
	AllowOvernight bool
}
