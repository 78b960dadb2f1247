package branch

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/pkg/psqlbuilder"
	"github.com/m04kA/SMC-BranchDirectory/pkg/types"
)

// dayTables описывает пару таблиц рабочих дней и перерывов,
// привязанных к родителю (расписанию или кассе)
type dayTables struct {
	days      string
	breaks    string
	parent    string
	parentCol string
}

var (
	scheduleDays = dayTables{
		days:      "branch_working_days",
		breaks:    "branch_breaks",
		parent:    "branch_schedules",
		parentCol: "schedule_id",
	}
	cashDeskDays = dayTables{
		days:      "cash_desk_working_days",
		breaks:    "cash_desk_breaks",
		parent:    "branch_cash_desks",
		parentCol: "cash_desk_id",
	}
)

func insertBranch(ctx context.Context, executor DBExecutor, b *domain.Branch) error {
	extraServices := b.ExtraServices
	if extraServices == nil {
		extraServices = []string{}
	}
	payload := string(b.Payload)
	if payload == "" {
		payload = "{}"
	}

	query, args, err := psqlbuilder.Insert("branches").
		Columns(
			"external_id",
			"name",
			"type",
			"is_temporary_closed",
			"is_regular",
			"extra_services",
			"payload",
			"last_updated",
		).
		Values(
			b.ExternalID,
			b.Name,
			string(b.Type),
			b.IsTemporaryClosed,
			b.IsRegular,
			pq.Array(extraServices),
			payload,
			b.LastUpdated,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceAll - build branch insert: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&b.ID); err != nil {
		return fmt.Errorf("%w: ReplaceAll - insert branch external_id=%d: %v", ErrExecQuery, b.ExternalID, err)
	}

	query, args, err = psqlbuilder.Insert("branch_addresses").
		Columns("branch_id", "base_city", "city", "detailed_address", "full_address", "latitude", "longitude").
		Values(
			b.ID,
			b.Address.BaseCity,
			b.Address.City,
			b.Address.DetailedAddress,
			b.Address.FullAddress,
			b.Address.Latitude,
			b.Address.Longitude,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceAll - build address insert: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceAll - insert address branch_id=%d: %v", ErrExecQuery, b.ID, err)
	}

	for i, s := range b.Schedules {
		var scheduleID int64
		query, args, err := psqlbuilder.Insert("branch_schedules").
			Columns("branch_id", "workstation", "position").
			Values(b.ID, s.Workstation, i).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceAll - build schedule insert: %v", ErrBuildQuery, err)
		}
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&scheduleID); err != nil {
			return fmt.Errorf("%w: ReplaceAll - insert schedule branch_id=%d: %v", ErrExecQuery, b.ID, err)
		}
		if err := insertDays(ctx, executor, scheduleDays, scheduleID, s.Days); err != nil {
			return err
		}
	}

	if len(b.Phones) > 0 {
		builder := psqlbuilder.Insert("branch_phones").Columns("branch_id", "position", "operator_code", "number")
		for i, p := range b.Phones {
			builder = builder.Values(b.ID, i, p.OperatorCode, p.Number)
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceAll - build phones insert: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: ReplaceAll - insert phones branch_id=%d: %v", ErrExecQuery, b.ID, err)
		}
	}

	for i, c := range b.CashDesks {
		var cashDeskID int64
		query, args, err := psqlbuilder.Insert("branch_cash_desks").
			Columns("branch_id", "external_id", "description", "position").
			Values(b.ID, c.ExternalID, c.Description, i).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceAll - build cash desk insert: %v", ErrBuildQuery, err)
		}
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&cashDeskID); err != nil {
			return fmt.Errorf("%w: ReplaceAll - insert cash desk branch_id=%d cash_id=%d: %v", ErrExecQuery, b.ID, c.ExternalID, err)
		}
		if err := insertDays(ctx, executor, cashDeskDays, cashDeskID, c.Days); err != nil {
			return err
		}
	}

	return nil
}

func insertDays(ctx context.Context, executor DBExecutor, t dayTables, parentID int64, days []domain.WorkingDay) error {
	for _, d := range days {
		var dayID int64
		query, args, err := psqlbuilder.Insert(t.days).
			Columns(t.parentCol, "day_of_week", "work_from", "work_to").
			Values(parentID, int(d.Day), d.Hours.From, d.Hours.To).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceAll - build %s insert: %v", ErrBuildQuery, t.days, err)
		}
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&dayID); err != nil {
			return fmt.Errorf("%w: ReplaceAll - insert %s %s=%d: %v", ErrExecQuery, t.days, t.parentCol, parentID, err)
		}

		if len(d.Breaks) == 0 {
			continue
		}

		builder := psqlbuilder.Insert(t.breaks).Columns("working_day_id", "position", "break_from", "break_to")
		for i, br := range d.Breaks {
			builder = builder.Values(dayID, i, br.From, br.To)
		}
		query, args, err = builder.ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceAll - build %s insert: %v", ErrBuildQuery, t.breaks, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: ReplaceAll - insert %s working_day_id=%d: %v", ErrExecQuery, t.breaks, dayID, err)
		}
	}

	return nil
}

// loadChildren дочитывает расписания, телефоны и кассы для уже загруженных отделений
func loadChildren(ctx context.Context, executor DBExecutor, branches []*domain.Branch) error {
	if len(branches) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(branches))
	byID := make(map[int64]*domain.Branch, len(branches))
	for _, b := range branches {
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	if err := loadSchedules(ctx, executor, ids, byID); err != nil {
		return err
	}
	if err := loadPhones(ctx, executor, ids, byID); err != nil {
		return err
	}
	return loadCashDesks(ctx, executor, ids, byID)
}

func loadSchedules(ctx context.Context, executor DBExecutor, ids []int64, byID map[int64]*domain.Branch) error {
	days, err := loadDays(ctx, executor, scheduleDays, ids)
	if err != nil {
		return err
	}

	query, args, err := psqlbuilder.Select("id", "branch_id", "workstation").
		From("branch_schedules").
		Where(squirrel.Eq{"branch_id": ids}).
		OrderBy("branch_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadSchedules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadSchedules - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, branchID int64
		var workstation string
		if err := rows.Scan(&id, &branchID, &workstation); err != nil {
			return fmt.Errorf("%w: loadSchedules - scan row: %v", ErrScanRow, err)
		}
		b := byID[branchID]
		b.Schedules = append(b.Schedules, domain.Schedule{Workstation: workstation, Days: days[id]})
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadSchedules - rows iteration: %v", ErrScanRow, err)
	}

	return nil
}

func loadPhones(ctx context.Context, executor DBExecutor, ids []int64, byID map[int64]*domain.Branch) error {
	query, args, err := psqlbuilder.Select("branch_id", "operator_code", "number").
		From("branch_phones").
		Where(squirrel.Eq{"branch_id": ids}).
		OrderBy("branch_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadPhones - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadPhones - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var branchID int64
		var p domain.ContactPhone
		if err := rows.Scan(&branchID, &p.OperatorCode, &p.Number); err != nil {
			return fmt.Errorf("%w: loadPhones - scan row: %v", ErrScanRow, err)
		}
		b := byID[branchID]
		b.Phones = append(b.Phones, p)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadPhones - rows iteration: %v", ErrScanRow, err)
	}

	return nil
}

func loadCashDesks(ctx context.Context, executor DBExecutor, ids []int64, byID map[int64]*domain.Branch) error {
	days, err := loadDays(ctx, executor, cashDeskDays, ids)
	if err != nil {
		return err
	}

	query, args, err := psqlbuilder.Select("id", "branch_id", "external_id", "description").
		From("branch_cash_desks").
		Where(squirrel.Eq{"branch_id": ids}).
		OrderBy("branch_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadCashDesks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadCashDesks - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, branchID int64
		var c domain.CashDesk
		if err := rows.Scan(&id, &branchID, &c.ExternalID, &c.Description); err != nil {
			return fmt.Errorf("%w: loadCashDesks - scan row: %v", ErrScanRow, err)
		}
		c.Days = days[id]
		b := byID[branchID]
		b.CashDesks = append(b.CashDesks, c)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadCashDesks - rows iteration: %v", ErrScanRow, err)
	}

	return nil
}

// loadDays возвращает рабочие дни с перерывами, сгруппированные по id родителя
func loadDays(ctx context.Context, executor DBExecutor, t dayTables, branchIDs []int64) (map[int64][]domain.WorkingDay, error) {
	breaks, err := loadBreaks(ctx, executor, t, branchIDs)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Select("d.id", "d."+t.parentCol, "d.day_of_week", "d.work_from", "d.work_to").
		From(t.days + " d").
		Join(t.parent + " p ON p.id = d." + t.parentCol).
		Where(squirrel.Eq{"p.branch_id": branchIDs}).
		OrderBy("d."+t.parentCol, "d.day_of_week").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadDays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadDays - execute select %s: %v", ErrExecQuery, t.days, err)
	}
	defer rows.Close()

	days := make(map[int64][]domain.WorkingDay)
	for rows.Next() {
		var id, parentID int64
		var day int
		var from, to types.TimeString
		if err := rows.Scan(&id, &parentID, &day, &from, &to); err != nil {
			return nil, fmt.Errorf("%w: loadDays - scan row: %v", ErrScanRow, err)
		}
		days[parentID] = append(days[parentID], domain.WorkingDay{
			Day:    domain.DayOfWeek(day),
			Hours:  domain.TimeRange{From: from, To: to},
			Breaks: breaks[id],
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadDays - rows iteration: %v", ErrScanRow, err)
	}

	return days, nil
}

func loadBreaks(ctx context.Context, executor DBExecutor, t dayTables, branchIDs []int64) (map[int64][]domain.Break, error) {
	query, args, err := psqlbuilder.Select("br.working_day_id", "br.break_from", "br.break_to").
		From(t.breaks + " br").
		Join(t.days + " d ON d.id = br.working_day_id").
		Join(t.parent + " p ON p.id = d." + t.parentCol).
		Where(squirrel.Eq{"p.branch_id": branchIDs}).
		OrderBy("br.working_day_id", "br.position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - execute select %s: %v", ErrExecQuery, t.breaks, err)
	}
	defer rows.Close()

	breaks := make(map[int64][]domain.Break)
	for rows.Next() {
		var dayID int64
		var br domain.Break
		if err := rows.Scan(&dayID, &br.From, &br.To); err != nil {
			return nil, fmt.Errorf("%w: loadBreaks - scan row: %v", ErrScanRow, err)
		}
		breaks[dayID] = append(breaks[dayID], br)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - rows iteration: %v", ErrScanRow, err)
	}

	return breaks, nil
}
