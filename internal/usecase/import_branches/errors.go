package import_branches

import "errors"

// Ошибки уровня записи фида: запись отклоняется, импорт продолжается
var (
	// ErrMalformedTime возвращается, если время не в формате HH:MM
	ErrMalformedTime = errors.New("import_branches: malformed time")

	// ErrUnknownDayName возвращается для названия дня, которого нет в таблице
	ErrUnknownDayName = errors.New("import_branches: unknown day name")

	// ErrDuplicateWorkingDay возвращается, если день повторяется в одном расписании
	ErrDuplicateWorkingDay = errors.New("import_branches: duplicate working day")

	// ErrInvalidTimeRange возвращается, если начало дня позже конца, а ночные смены запрещены
	ErrInvalidTimeRange = errors.New("import_branches: invalid time range")

	// ErrInvalidBreakRange перерыв вне рабочего дня или пересекается с другим
	// Перерыв отбрасывается, запись не отклоняется
	ErrInvalidBreakRange = errors.New("import_branches: invalid break range")

	// ErrUnknownDepartmentType возвращается для неизвестного типа отделения
	ErrUnknownDepartmentType = errors.New("import_branches: unknown department type")

	// ErrDuplicateSchedule возвращается, если workstation повторяется в одной записи
	ErrDuplicateSchedule = errors.New("import_branches: duplicate schedule workstation")

	// ErrDuplicateCashDesk cashId повторяется в одной записи
	// Повторная касса отбрасывается, запись не отклоняется
	ErrDuplicateCashDesk = errors.New("import_branches: duplicate cash desk")

	// ErrInvalidRecord возвращается, если запись не прошла структурную валидацию
	ErrInvalidRecord = errors.New("import_branches: invalid record")
)

// Фатальные ошибки: состояние справочника не меняется
var (
	// ErrInvalidPayload возвращается, если корень фида не разбирается
	ErrInvalidPayload = errors.New("import_branches: invalid payload")

	// ErrEmptyImportResult возвращается, если ни одна запись не прошла нормализацию
	ErrEmptyImportResult = errors.New("import_branches: empty import result")

	// ErrStorageWriteFailure возвращается, если не удалось заменить набор отделений
	ErrStorageWriteFailure = errors.New("import_branches: storage write failure")
)
