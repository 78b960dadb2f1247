package domain

import "time"

// FailureKind причина, по которой запись фида не была импортирована
type FailureKind string

const (
	FailureMalformedTime         FailureKind = "MalformedTime"
	FailureUnknownDayName        FailureKind = "UnknownDayName"
	FailureDuplicateWorkingDay   FailureKind = "DuplicateWorkingDay"
	FailureInvalidTimeRange      FailureKind = "InvalidTimeRange"
	FailureUnknownDepartmentType FailureKind = "UnknownDepartmentType"
	FailureDuplicateSchedule     FailureKind = "DuplicateSchedule"
	FailureInvalidRecord         FailureKind = "InvalidRecord"
)

// DiagnosticKind замечание по записи, которая все же была импортирована
type DiagnosticKind string

const (
	DiagnosticInvalidBreakRange  DiagnosticKind = "InvalidBreakRange"
	DiagnosticSkippedWorkstation DiagnosticKind = "SkippedWorkstation"
	DiagnosticInvalidPhone       DiagnosticKind = "InvalidPhone"
	DiagnosticDuplicateCashDesk  DiagnosticKind = "DuplicateCashDesk"
)

// RecordFailure отклоненная запись фида
type RecordFailure struct {
	Index        int // позиция записи в list
	DepartmentID int64
	Kind         FailureKind
	Message      string
}

// Diagnostic замечание к принятой записи (например, отброшенный перерыв)
type Diagnostic struct {
	Index        int
	DepartmentID int64
	Kind         DiagnosticKind
	Message      string
}

// ImportReport итог одного прогона импорта
type ImportReport struct {
	RunID       string
	Source      string
	Total       int
	Accepted    int
	Rejected    int
	Failures    []RecordFailure
	Diagnostics []Diagnostic
	StartedAt   time.Time
	FinishedAt  time.Time
}
