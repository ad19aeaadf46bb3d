package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/pkg/auth"
)

const recordColumns = "id, record_uid, book_uid, book_title, user_id, username, borrow_date, returned, return_date"

func (r *repository) CreateRecord(ctx context.Context, book model.Book, id auth.Identity) (model.BorrowRecord, error) {
	query, args, err := qb.Insert(recordsTableName).
		Columns("record_uid", "book_uid", "book_title", "user_id", "username", "borrow_date", "returned").
		Values(uuid.New(), book.BookUid, book.Title, id.UserID, id.Username, time.Now().UTC(), false).
		Suffix("returning " + recordColumns).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}

	var rec model.BorrowRecord
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		r.log.Error("CreateRecord", zap.String("q", query), zap.Any("args", args))
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) GetRecord(ctx context.Context, recordUid string) (model.BorrowRecord, error) {
	query, args, err := qb.Select("id", "record_uid", "book_uid", "book_title", "user_id", "username", "borrow_date", "returned", "return_date").
		From(recordsTableName).
		Where(sq.Eq{"record_uid": recordUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}

	var rec model.BorrowRecord
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

// MarkReturned flips the record OUTSTANDING -> RETURNED exactly once. The
// returned = false guard is the compare-and-swap that absorbs duplicate
// calls from retried requests.
func (r *repository) MarkReturned(ctx context.Context, recordUid string) error {
	q := `
update borrow_records
	set returned = true, return_date = now()
where record_uid = $1 and returned = false`

	res, err := r.db.ExecContext(ctx, q, recordUid)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := r.GetRecord(ctx, recordUid); getErr != nil {
			return getErr
		}
		return errs.ErrAlreadyReturned
	}
	return nil
}

func (r *repository) ListRecordsByUser(ctx context.Context, userID int) ([]model.BorrowRecord, error) {
	query, args, err := qb.Select("id", "record_uid", "book_uid", "book_title", "user_id", "username", "borrow_date", "returned", "return_date").
		From(recordsTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	items := make([]model.BorrowRecord, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}
