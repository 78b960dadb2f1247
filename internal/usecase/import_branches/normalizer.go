package import_branches

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/pkg/ptr"
)

// departmentTypes типы отделений фида (ключи в нижнем регистре)
var departmentTypes = map[string]domain.BranchType{
	"department": domain.BranchTypeDepartment,
	"branch":     domain.BranchTypeDepartment,
	"відділення": domain.BranchTypeDepartment,
	"отделение":  domain.BranchTypeDepartment,
	"atm":        domain.BranchTypeAtm,
	"банкомат":   domain.BranchTypeAtm,
	"terminal":   domain.BranchTypeTerminal,
	"tso":        domain.BranchTypeTerminal,
	"термінал":   domain.BranchTypeTerminal,
	"терминал":   domain.BranchTypeTerminal,
}

// Normalizer превращает фид отделений в набор агрегатов Branch
// Не выполняет I/O, не читает часы и не назначает ID
type Normalizer struct {
	policy   SchedulePolicy
	phones   *PhoneParser
	validate *validator.Validate
}

// NewNormalizer создает нормализатор
func NewNormalizer(policy SchedulePolicy, phoneRegion string) *Normalizer {
	return &Normalizer{
		policy:   policy,
		phones:   NewPhoneParser(phoneRegion),
		validate: newRecordValidator(),
	}
}

// Normalize разбирает фид {"list": [...]}
// Отклоненные записи попадают в отчет, остальные возвращаются в порядке фида
func (n *Normalizer) Normalize(payload []byte) ([]*domain.Branch, domain.ImportReport, error) {
	var report domain.ImportReport

	var root feedRoot
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, report, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	report.Total = len(root.List)
	branches := make([]*domain.Branch, 0, len(root.List))

	for i, raw := range root.List {
		branch, diagnostics, err := n.normalizeRecord(raw)
		if err != nil {
			report.Failures = append(report.Failures, domain.RecordFailure{
				Index:        i,
				DepartmentID: peekDepartmentID(raw),
				Kind:         classifyFailure(err),
				Message:      err.Error(),
			})
			continue
		}

		for _, d := range diagnostics {
			d.Index = i
			d.DepartmentID = branch.ExternalID
			report.Diagnostics = append(report.Diagnostics, d)
		}
		branches = append(branches, branch)
	}

	report.Accepted = len(branches)
	report.Rejected = len(report.Failures)

	if len(branches) == 0 {
		return nil, report, ErrEmptyImportResult
	}

	return branches, report, nil
}

func (n *Normalizer) normalizeRecord(raw json.RawMessage) (*domain.Branch, []domain.Diagnostic, error) {
	// Payload хранится как текст, байты должны быть корректным UTF-8
	if !utf8.Valid(raw) {
		return nil, nil, fmt.Errorf("%w: invalid UTF-8", ErrInvalidRecord)
	}

	var rec departmentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	if err := validateRecord(n.validate, &rec); err != nil {
		return nil, nil, err
	}

	branchType, ok := departmentTypes[strings.ToLower(strings.TrimSpace(rec.DepartmentType))]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDepartmentType, rec.DepartmentType)
	}

	var diagnostics []domain.Diagnostic

	schedules, scheduleDiags, err := n.buildSchedules(rec.TimeTables)
	if err != nil {
		return nil, nil, err
	}
	diagnostics = append(diagnostics, scheduleDiags...)

	cashDesks, cashDiags, err := n.buildCashDesks(rec.CashDepartments)
	if err != nil {
		return nil, nil, err
	}
	diagnostics = append(diagnostics, cashDiags...)

	phones, phoneDiags := n.buildPhones(rec.Phones)
	diagnostics = append(diagnostics, phoneDiags...)

	branch := &domain.Branch{
		ExternalID:        rec.DepartmentID,
		Name:              strings.TrimSpace(rec.DepartmentName),
		Type:              branchType,
		IsTemporaryClosed: rec.IsTemporaryClosed,
		IsRegular:         rec.IsRegular,
		Address:           buildAddress(rec),
		ExtraServices:     cleanStrings(rec.ExtraServices),
		Schedules:         schedules,
		Phones:            phones,
		CashDesks:         cashDesks,
		Payload:           append(json.RawMessage(nil), raw...),
	}

	return branch, diagnostics, nil
}

// buildSchedules строит расписания отделения из timeTables
// Блоки касс пропускаются: их дни приходят в cashDepartments
func (n *Normalizer) buildSchedules(tables []timeTableDTO) ([]domain.Schedule, []domain.Diagnostic, error) {
	if len(tables) == 0 {
		return nil, nil, nil
	}

	schedules := make([]domain.Schedule, 0, len(tables))
	seen := make(map[string]struct{}, len(tables))
	var diagnostics []domain.Diagnostic

	for _, table := range tables {
		label := strings.TrimSpace(table.Workstation)

		if strings.EqualFold(label, domain.CashDepartmentWorkstation) {
			diagnostics = append(diagnostics, domain.Diagnostic{
				Kind:    domain.DiagnosticSkippedWorkstation,
				Message: fmt.Sprintf("timetable %q skipped: cash desk hours are taken from cashDepartments", label),
			})
			continue
		}

		schedule, scheduleDiags, err := BuildSchedule(label, workDaysToRaw(table.WorkDays), n.policy)
		if err != nil {
			return nil, nil, err
		}

		key := strings.ToLower(schedule.Workstation)
		if _, dup := seen[key]; dup {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateSchedule, schedule.Workstation)
		}
		seen[key] = struct{}{}

		schedules = append(schedules, schedule)
		diagnostics = append(diagnostics, scheduleDiags...)
	}

	if len(schedules) == 0 {
		schedules = nil
	}

	return schedules, diagnostics, nil
}

// buildCashDesks строит кассы отделения
// Повтор cashId отбрасывается с замечанием, остается первая касса
func (n *Normalizer) buildCashDesks(cashDepartments []cashDepartmentDTO) ([]domain.CashDesk, []domain.Diagnostic, error) {
	if len(cashDepartments) == 0 {
		return nil, nil, nil
	}

	desks := make([]domain.CashDesk, 0, len(cashDepartments))
	seen := make(map[int64]struct{}, len(cashDepartments))
	var diagnostics []domain.Diagnostic

	for _, cd := range cashDepartments {
		if _, dup := seen[cd.CashID]; dup {
			diagnostics = append(diagnostics, domain.Diagnostic{
				Kind:    domain.DiagnosticDuplicateCashDesk,
				Message: fmt.Sprintf("cash desk %d dropped: %v", cd.CashID, ErrDuplicateCashDesk),
			})
			continue
		}
		seen[cd.CashID] = struct{}{}

		days, dayDiags, err := BuildWorkingDays(cashDaysToRaw(cd.WorkDays), n.policy)
		if err != nil {
			return nil, nil, fmt.Errorf("cash desk %d: %w", cd.CashID, err)
		}

		for _, d := range dayDiags {
			d.Message = fmt.Sprintf("cash desk %d: %s", cd.CashID, d.Message)
			diagnostics = append(diagnostics, d)
		}

		desks = append(desks, domain.CashDesk{
			ExternalID:  cd.CashID,
			Description: strings.TrimSpace(cd.CashDescription),
			Days:        days,
		})
	}

	return desks, diagnostics, nil
}

func (n *Normalizer) buildPhones(raw []string) ([]domain.ContactPhone, []domain.Diagnostic) {
	if len(raw) == 0 {
		return nil, nil
	}

	phones := make([]domain.ContactPhone, 0, len(raw))
	var diagnostics []domain.Diagnostic

	for _, r := range raw {
		phone, err := n.phones.Parse(r)
		if err != nil {
			diagnostics = append(diagnostics, domain.Diagnostic{
				Kind:    domain.DiagnosticInvalidPhone,
				Message: fmt.Sprintf("phone %q dropped: %v", r, err),
			})
			continue
		}
		phones = append(phones, phone)
	}

	if len(phones) == 0 {
		phones = nil
	}

	return phones, diagnostics
}

// buildAddress собирает адрес, отсутствующая геолокация дает (0, 0)
func buildAddress(rec departmentRecord) domain.Address {
	addr := domain.Address{FullAddress: strings.TrimSpace(rec.FullAddress)}
	if rec.Address == nil {
		return addr
	}

	addr.City = strings.TrimSpace(rec.Address.City)
	addr.BaseCity = strings.TrimSpace(rec.Address.BaseCity)
	if addr.BaseCity == "" {
		addr.BaseCity = addr.City
	}
	if rec.Address.DetailedAddress != nil {
		addr.DetailedAddress = ptr.StringOrNil(strings.TrimSpace(*rec.Address.DetailedAddress))
	}
	if rec.Address.GeoLocation != nil {
		addr.Latitude = rec.Address.GeoLocation.Lat
		addr.Longitude = rec.Address.GeoLocation.Long
	}

	return addr
}

func cleanStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// peekDepartmentID достает departmentId из записи, которую не удалось разобрать целиком
func peekDepartmentID(raw json.RawMessage) int64 {
	var head struct {
		DepartmentID int64 `json:"departmentId"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.DepartmentID
}

func classifyFailure(err error) domain.FailureKind {
	switch {
	case errors.Is(err, ErrMalformedTime):
		return domain.FailureMalformedTime
	case errors.Is(err, ErrUnknownDayName):
		return domain.FailureUnknownDayName
	case errors.Is(err, ErrDuplicateWorkingDay):
		return domain.FailureDuplicateWorkingDay
	case errors.Is(err, ErrInvalidTimeRange):
		return domain.FailureInvalidTimeRange
	case errors.Is(err, ErrUnknownDepartmentType):
		return domain.FailureUnknownDepartmentType
	case errors.Is(err, ErrDuplicateSchedule):
		return domain.FailureDuplicateSchedule
	default:
		return domain.FailureInvalidRecord
	}
}
