package import_branches

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/pkg/types"
)

const minutesPerDay = 24 * 60

// BuildSchedule строит расписание рабочего места из сырых дней фида
// При ошибке уровня записи расписание не возвращается целиком
// Некорректные перерывы отбрасываются и попадают в diagnostics
func BuildSchedule(label string, raw []RawWorkDay, policy SchedulePolicy) (domain.Schedule, []domain.Diagnostic, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = domain.DefaultWorkstation
	}

	days, diagnostics, err := BuildWorkingDays(raw, policy)
	if err != nil {
		return domain.Schedule{}, nil, fmt.Errorf("workstation %q: %w", label, err)
	}

	for i := range diagnostics {
		diagnostics[i].Message = fmt.Sprintf("workstation %q: %s", label, diagnostics[i].Message)
	}

	return domain.Schedule{Workstation: label, Days: days}, diagnostics, nil
}

// BuildWorkingDays приводит сырые дни к упорядоченному списку WorkingDay
// Используется и для расписаний отделения, и для касс
func BuildWorkingDays(raw []RawWorkDay, policy SchedulePolicy) ([]domain.WorkingDay, []domain.Diagnostic, error) {
	days := make([]domain.WorkingDay, 0, len(raw))
	seen := make(map[domain.DayOfWeek]struct{}, len(raw))
	var diagnostics []domain.Diagnostic

	for _, r := range raw {
		day, ok := domain.ParseDayOfWeek(r.DayName)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDayName, r.DayName)
		}

		if _, dup := seen[day]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateWorkingDay, day)
		}
		seen[day] = struct{}{}

		hours, err := parseRange(r.From, r.To)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", day, err)
		}

		if hours.IsOvernight() && !policy.AllowOvernight {
			return nil, nil, fmt.Errorf("%w: %s %s-%s", ErrInvalidTimeRange, day, hours.From, hours.To)
		}

		breaks, dropped, err := buildBreaks(day, hours, r.Breaks)
		if err != nil {
			return nil, nil, err
		}
		diagnostics = append(diagnostics, dropped...)

		days = append(days, domain.WorkingDay{Day: day, Hours: hours, Breaks: breaks})
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	return days, diagnostics, nil
}

// buildBreaks оставляет перерывы внутри рабочего дня, не пересекающиеся с уже принятыми
// Порядок принятых перерывов совпадает с порядком во входных данных
func buildBreaks(day domain.DayOfWeek, hours domain.TimeRange, raw []RawBreak) ([]domain.Break, []domain.Diagnostic, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}

	dayStart, dayEnd, err := hours.Minutes()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedTime, err)
	}

	type interval struct{ start, end int }

	kept := make([]domain.Break, 0, len(raw))
	keptIntervals := make([]interval, 0, len(raw))
	var diagnostics []domain.Diagnostic

	drop := func(b RawBreak, reason string) {
		diagnostics = append(diagnostics, domain.Diagnostic{
			Kind:    domain.DiagnosticInvalidBreakRange,
			Message: fmt.Sprintf("%s: break %s-%s dropped: %s", day, b.From, b.To, reason),
		})
	}

	for _, b := range raw {
		rng, err := parseRange(b.From, b.To)
		if err != nil {
			return nil, nil, fmt.Errorf("%s break: %w", day, err)
		}

		start, end, _ := rng.Minutes()
		if start == end {
			drop(b, "empty interval")
			continue
		}

		// Перерыв после полуночи в ночной смене
		if hours.IsOvernight() && start < dayStart {
			start += minutesPerDay
			end += minutesPerDay
		}

		if rng.IsOvernight() && !hours.IsOvernight() {
			drop(b, "break crosses midnight")
			continue
		}

		if start < dayStart || end > dayEnd {
			drop(b, fmt.Sprintf("outside working hours %s-%s", hours.From, hours.To))
			continue
		}

		overlaps := false
		for _, k := range keptIntervals {
			if start < k.end && k.start < end {
				overlaps = true
				break
			}
		}
		if overlaps {
			drop(b, "overlaps another break")
			continue
		}

		kept = append(kept, domain.Break{From: rng.From, To: rng.To})
		keptIntervals = append(keptIntervals, interval{start: start, end: end})
	}

	if len(kept) == 0 {
		kept = nil
	}

	return kept, diagnostics, nil
}

func parseRange(from, to string) (domain.TimeRange, error) {
	f, err := types.NewTimeStringFromString(strings.TrimSpace(from))
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("%w: from %q", ErrMalformedTime, from)
	}
	t, err := types.NewTimeStringFromString(strings.TrimSpace(to))
	if err != nil {
		return domain.TimeRange{}, fmt.Errorf("%w: to %q", ErrMalformedTime, to)
	}
	return domain.TimeRange{From: f, To: t}, nil
}
