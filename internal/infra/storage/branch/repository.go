package branch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/pkg/dbmetrics"
	"github.com/m04kA/SMC-BranchDirectory/pkg/psqlbuilder"
)

// replaceLockKey ключ advisory lock, которым сериализуются запись набора и смена статуса
const replaceLockKey int64 = 0x42524e43

// Repository репозиторий отделений в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отделений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ReplaceAll заменяет весь набор отделений
// Должен вызываться внутри транзакции: удаление и вставка видны читателям только после коммита.
// Идентификаторы назначаются при вставке и записываются в переданные агрегаты.
func (r *Repository) ReplaceAll(ctx context.Context, branches []*domain.Branch) (int, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return 0, fmt.Errorf("%w: ReplaceAll - must be called inside a transaction", ErrTransaction)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	if err := lock(ctx, executor); err != nil {
		return 0, fmt.Errorf("%w: ReplaceAll - %v", ErrTransaction, err)
	}

	query, args, err := psqlbuilder.Delete("branches").ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ReplaceAll - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("%w: ReplaceAll - execute delete: %v", ErrExecQuery, err)
	}

	for _, b := range branches {
		if err := insertBranch(ctx, executor, b); err != nil {
			return 0, err
		}
	}

	return len(branches), nil
}

// List возвращает отделения по фильтру, упорядоченные по id
// Для согласованного снимка вложенных таблиц вызывать внутри read-only транзакции
func (r *Repository) List(ctx context.Context, filter domain.BranchFilter) ([]*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := selectBranches()
	if filter.Type != nil {
		builder = builder.Where(squirrel.Eq{"b.type": string(*filter.Type)})
	}
	if filter.BaseCity != nil {
		builder = builder.Where(squirrel.Eq{"a.base_city": *filter.BaseCity})
	}
	if !filter.IncludeClosed {
		builder = builder.Where(squirrel.Eq{"b.is_temporary_closed": false})
	}

	query, args, err := builder.OrderBy("b.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var branches []*domain.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		branches = append(branches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows iteration: %v", ErrScanRow, err)
	}

	if err := loadChildren(ctx, executor, branches); err != nil {
		return nil, err
	}

	return branches, nil
}

// GetByID получает отделение по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBranches().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBranch(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBranchNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan row: %v", ErrScanRow, err)
	}

	if err := loadChildren(ctx, executor, []*domain.Branch{b}); err != nil {
		return nil, err
	}

	return b, nil
}

// PatchTemporaryClosed меняет флаг временного закрытия и время обновления
// Внутри транзакции берет тот же advisory lock, что и ReplaceAll
func (r *Repository) PatchTemporaryClosed(ctx context.Context, id int64, closed bool, updatedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if dbmetrics.IsInTransaction(ctx) {
		if err := lock(ctx, executor); err != nil {
			return fmt.Errorf("%w: PatchTemporaryClosed - %v", ErrTransaction, err)
		}
	}

	query, args, err := psqlbuilder.Update("branches").
		Set("is_temporary_closed", closed).
		Set("last_updated", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: PatchTemporaryClosed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: PatchTemporaryClosed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: PatchTemporaryClosed - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBranchNotFound
	}

	return nil
}

// ListCities возвращает уникальные базовые города в алфавитном порядке
func (r *Repository) ListCities(ctx context.Context) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT base_city").
		From("branch_addresses").
		Where(squirrel.NotEq{"base_city": ""}).
		OrderBy("base_city").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListCities - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListCities - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	cities := make([]string, 0)
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("%w: ListCities - scan row: %v", ErrScanRow, err)
		}
		cities = append(cities, city)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListCities - rows iteration: %v", ErrScanRow, err)
	}

	return cities, nil
}

func lock(ctx context.Context, executor DBExecutor) error {
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", replaceLockKey); err != nil {
		return fmt.Errorf("acquire advisory lock: %v", err)
	}
	return nil
}

func selectBranches() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"b.id",
		"b.external_id",
		"b.name",
		"b.type",
		"b.is_temporary_closed",
		"b.is_regular",
		"b.extra_services",
		"b.payload",
		"b.last_updated",
		"a.base_city",
		"a.city",
		"a.detailed_address",
		"a.full_address",
		"a.latitude",
		"a.longitude",
	).
		From("branches b").
		Join("branch_addresses a ON a.branch_id = b.id")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBranch(row rowScanner) (*domain.Branch, error) {
	var b domain.Branch
	var branchType, payload string
	var detailedAddress sql.NullString
	var extraServices pq.StringArray

	err := row.Scan(
		&b.ID,
		&b.ExternalID,
		&b.Name,
		&branchType,
		&b.IsTemporaryClosed,
		&b.IsRegular,
		&extraServices,
		&payload,
		&b.LastUpdated,
		&b.Address.BaseCity,
		&b.Address.City,
		&detailedAddress,
		&b.Address.FullAddress,
		&b.Address.Latitude,
		&b.Address.Longitude,
	)
	if err != nil {
		return nil, err
	}

	b.Type = domain.BranchType(branchType)
	b.Payload = []byte(payload)
	b.LastUpdated = b.LastUpdated.UTC()
	if len(extraServices) > 0 {
		b.ExtraServices = []string(extraServices)
	}
	if detailedAddress.Valid {
		b.Address.DetailedAddress = &detailedAddress.String
	}

	return &b, nil
}
