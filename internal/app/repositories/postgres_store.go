package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/aaeducates/backend/internal/db"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/aaeducates/backend/internal/pkg/dberrors"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PgTable stores one entity kind in PostgreSQL.
type PgTable[T any] struct {
	db     *db.PostgresDB
	sb     squirrel.StatementBuilderType
	schema Schema[T]
	now    func() time.Time
}

// NewPgTable creates a PostgreSQL-backed store for schema
func NewPgTable[T any](database *db.PostgresDB, schema Schema[T]) *PgTable[T] {
	return &PgTable[T]{
		db:     database,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		schema: schema,
		now:    time.Now,
	}
}

// List returns one page of rows matching filter and the total match count
func (r *PgTable[T]) List(ctx context.Context, filter Filter, page Page) ([]*T, int64, error) {
	if filter.None {
		return []*T{}, 0, nil
	}

	countQuery := r.sb.Select("COUNT(*)").From(r.schema.Table)
	if len(filter.Conds) > 0 {
		countQuery = countQuery.Where(filter.sqlizer())
	}
	sql, args, err := countQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error building count SQL")
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error counting rows")
		return nil, 0, fmt.Errorf("error counting %s: %w", r.schema.Table, err)
	}

	query := r.sb.Select(r.schema.selectColumns()...).From(r.schema.Table)
	if len(filter.Conds) > 0 {
		query = query.Where(filter.sqlizer())
	}
	if r.schema.OrderBy != "" {
		query = query.OrderBy(r.schema.OrderBy, "id DESC")
	} else {
		query = query.OrderBy("id ASC")
	}
	if page.Limit > 0 {
		query = query.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		query = query.Offset(page.Offset)
	}

	items, err := r.selectRows(ctx, r.db.Pool, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns the row with id if it matches filter
func (r *PgTable[T]) Get(ctx context.Context, filter Filter, id int64) (*T, error) {
	return r.FindOne(ctx, filter.And("id", id))
}

// FindOne returns the first row matching filter
func (r *PgTable[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	if filter.None {
		return nil, ErrNotFound
	}
	query := r.sb.Select(r.schema.selectColumns()...).From(r.schema.Table)
	if len(filter.Conds) > 0 {
		query = query.Where(filter.sqlizer())
	}
	query = query.OrderBy("id ASC").Limit(1)

	items, err := r.selectRows(ctx, r.db.Pool, query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// Create inserts item and its many-to-many edges in one transaction
func (r *PgTable[T]) Create(ctx context.Context, item *T) error {
	if r.schema.Stamp != nil {
		r.schema.Stamp(item, r.now(), true)
	}

	sql, args, err := r.sb.Insert(r.schema.Table).
		Columns(r.schema.Columns...).
		Values(r.schema.Values(item)...).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error building insert SQL")
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, args...).Scan(r.schema.ID(item)); err != nil {
			return err
		}
		return r.writeLinks(ctx, tx, item)
	})
	return r.translate(err, "insert")
}

// Update rewrites item and replaces its many-to-many edges in one transaction
func (r *PgTable[T]) Update(ctx context.Context, item *T) error {
	return r.UpdateWhere(ctx, All(), item)
}

// UpdateWhere writes item when its row also matches filter
func (r *PgTable[T]) UpdateWhere(ctx context.Context, filter Filter, item *T) error {
	if filter.None {
		return ErrNotFound
	}
	if r.schema.Stamp != nil {
		r.schema.Stamp(item, r.now(), false)
	}

	values := r.schema.Values(item)
	setMap := make(map[string]interface{}, len(r.schema.Columns))
	for i, col := range r.schema.Columns {
		setMap[col] = values[i]
	}

	id := *r.schema.ID(item)
	query := r.sb.Update(r.schema.Table).
		SetMap(setMap).
		Where(squirrel.Eq{"id": id})
	if len(filter.Conds) > 0 {
		query = query.Where(filter.sqlizer())
	}
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error building update SQL")
		return fmt.Errorf("failed to build update query: %w", err)
	}

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return r.writeLinks(ctx, tx, item)
	})
	return r.translate(err, "update")
}

// Delete removes the row with id; join rows go with it through ON DELETE CASCADE
func (r *PgTable[T]) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete(r.schema.Table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error building delete SQL")
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if constraint, ok := dberrors.ForeignKeyViolation(err); ok {
			logger.Warn().Str("table", r.schema.Table).Str("constraint", constraint).Int64("id", id).Msg("Delete blocked by referencing rows")
			return apperrors.NewConflictError("This record is still referenced by other records")
		}
		logger.Error().Err(err).Str("table", r.schema.Table).Int64("id", id).Msg("Error executing delete query")
		return fmt.Errorf("error deleting from %s: %w", r.schema.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgTable[T]) selectRows(ctx context.Context, q querier, query squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error building select SQL")
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error executing select query")
		return nil, fmt.Errorf("error querying %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item := new(T)
		if err := rows.Scan(r.schema.Scan(item)...); err != nil {
			logger.Error().Err(err).Str("table", r.schema.Table).Msg("Error scanning row")
			return nil, fmt.Errorf("error scanning %s row: %w", r.schema.Table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", r.schema.Table, err)
	}

	if err := r.loadLinks(ctx, q, items); err != nil {
		return nil, err
	}
	if r.schema.Loaded != nil {
		for _, item := range items {
			if err := r.schema.Loaded(item); err != nil {
				return nil, err
			}
		}
	}
	return items, nil
}

func (r *PgTable[T]) loadLinks(ctx context.Context, q querier, items []*T) error {
	if len(r.schema.Links) == 0 || len(items) == 0 {
		return nil
	}

	byID := make(map[int64]*T, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id := *r.schema.ID(item)
		byID[id] = item
		ids = append(ids, id)
	}

	for _, link := range r.schema.Links {
		for _, item := range items {
			link.Set(item, []int64{})
		}

		sql, args, err := r.sb.Select(link.OwnerCol, link.TargetCol).
			From(link.Table).
			Where(squirrel.Eq{link.OwnerCol: ids}).
			OrderBy(link.TargetCol).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build %s link query: %w", link.Table, err)
		}

		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Str("table", link.Table).Msg("Error loading link rows")
			return fmt.Errorf("error querying %s: %w", link.Table, err)
		}
		for rows.Next() {
			var owner, target int64
			if err := rows.Scan(&owner, &target); err != nil {
				rows.Close()
				return fmt.Errorf("error scanning %s row: %w", link.Table, err)
			}
			if item, ok := byID[owner]; ok {
				link.Set(item, append(link.Get(item), target))
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating %s rows: %w", link.Table, err)
		}
	}
	return nil
}

func (r *PgTable[T]) writeLinks(ctx context.Context, tx pgx.Tx, item *T) error {
	id := *r.schema.ID(item)
	for _, link := range r.schema.Links {
		sql, args, err := r.sb.Delete(link.Table).Where(squirrel.Eq{link.OwnerCol: id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build %s delete query: %w", link.Table, err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		targets := uniqueIDs(link.Get(item))
		if len(targets) == 0 {
			continue
		}
		insert := r.sb.Insert(link.Table).Columns(link.OwnerCol, link.TargetCol)
		for _, target := range targets {
			insert = insert.Values(id, target)
		}
		sql, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build %s insert query: %w", link.Table, err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if _, ok := dberrors.ForeignKeyViolation(err); ok {
				return apperrors.NewValidationError(link.Field, "Invalid pk - object does not exist.")
			}
			return err
		}
		link.Set(item, targets)
	}
	return nil
}

// translate maps driver errors to domain errors
func (r *PgTable[T]) translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if _, ok := apperrors.AsValidationError(err); ok {
		return err
	}
	if constraint, ok := dberrors.UniqueViolation(err); ok {
		if u, known := r.schema.uniqueFor(constraint); known {
			return r.schema.conflict(u)
		}
		return apperrors.NewValidationError(apperrors.NonFieldErrors, "A record with these values already exists.")
	}
	if constraint, ok := dberrors.ForeignKeyViolation(err); ok {
		return apperrors.NewValidationError(r.fieldForConstraint(constraint), "Invalid pk - object does not exist.")
	}
	logger.Error().Err(err).Str("table", r.schema.Table).Str("op", op).Msg("Error writing row")
	return fmt.Errorf("error during %s on %s: %w", op, r.schema.Table, err)
}

// fieldForConstraint derives the client field from a "<table>_<column>_fkey" constraint name
func (r *PgTable[T]) fieldForConstraint(constraint string) string {
	name := strings.TrimPrefix(constraint, r.schema.Table+"_")
	name = strings.TrimSuffix(name, "_fkey")
	name = strings.TrimSuffix(name, "_id")
	if name == "" || name == constraint {
		return apperrors.NonFieldErrors
	}
	return name
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
