package writers

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/infrastructure/repositories"
	"templatesync-pg-backend/internal/infrastructure/repositories/dialect"
)

// ReserveIDs takes count consecutive ids of table from the ids row, locked
// for the rest of the transaction. The row is seeded from max(key) on first use.
func (w *Writer) ReserveIDs(ctx context.Context, table models.TableID, count int) (uint64, error) {
	if count <= 0 {
		return 0, errors.Errorf("cannot reserve %d ids of %s", count, table)
	}
	key := repositories.KeyColumn(table)
	if key == "" {
		return 0, errors.Errorf("table %s has no id column", table)
	}

	last, found, err := w.lockNextID(ctx, table.String(), key)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to lock ids of %s", table)
	}
	if !found {
		if last, err = w.seedNextID(ctx, table.String(), key); err != nil {
			return 0, errors.Wrapf(err, "failed to seed ids of %s", table)
		}
	}

	args := dialect.NewArgs(w.d)
	query := fmt.Sprintf("update ids set nextid=%s where table_name=%s and field_name=%s",
		args.Add(last+uint64(count)), args.Add(table.String()), args.Add(key))
	if _, err := w.tx.Exec(ctx, query, args.Values()...); err != nil {
		return 0, errors.Wrapf(err, "failed to advance ids of %s", table)
	}

	klog.V(4).InfoS("Reserved ids", "table", table.String(), "first", last+1, "count", count)
	return last + 1, nil
}

func (w *Writer) lockNextID(ctx context.Context, table, key string) (uint64, bool, error) {
	args := dialect.NewArgs(w.d)
	query := fmt.Sprintf("select nextid from ids where table_name=%s and field_name=%s for update",
		args.Add(table), args.Add(key))
	rows, err := w.tx.Query(ctx, query, args.Values()...)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}
	var next uint64
	if err := rows.Scan(&next); err != nil {
		return 0, false, err
	}
	return next, true, nil
}

func (w *Writer) seedNextID(ctx context.Context, table, key string) (uint64, error) {
	rows, err := w.tx.Query(ctx, fmt.Sprintf("select coalesce(max(%s),0) from %s", key, table))
	if err != nil {
		return 0, err
	}
	var last uint64
	if rows.Next() {
		err = rows.Scan(&last)
	}
	if err == nil {
		err = rows.Err()
	}
	rows.Close()
	if err != nil {
		return 0, err
	}

	args := dialect.NewArgs(w.d)
	query := fmt.Sprintf("insert into ids (table_name,field_name,nextid) values (%s,%s,%s)",
		args.Add(table), args.Add(key), args.Add(last))
	if _, err := w.tx.Exec(ctx, query, args.Values()...); err != nil {
		return 0, err
	}
	return last, nil
}
