package domain

// Форматы времени и даты
const (
	TimeFormat = "15:04" // HH:MM
	DateFormat = "2006-01-02"
)

// Метки рабочих мест
const (
	// DefaultWorkstation метка расписания самого отделения
	// Подставляется, если в записи фида workstation пустой
	DefaultWorkstation = "department"

	// CashDepartmentWorkstation метка расписаний касс
	// Такие блоки в timeTables не превращаются в расписания отделения
	CashDepartmentWorkstation = "cashDepartment"
)

// Значения по умолчанию для импорта
const (
	DefaultPhoneRegion = "UA"
	ImportSourceUpload = "upload"
	ImportSourceFeed   = "feed"
)
