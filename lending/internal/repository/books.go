package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
)

const bookColumns = "id, book_uid, title, author, quantity, initial_quantity"

func (r *repository) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	query, args, err := qb.Select("id", "book_uid", "title", "author", "quantity", "initial_quantity").
		From(booksTableName).
		Where(sq.Eq{"book_uid": bookUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}

	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("book_uid", "title", "author", "quantity", "initial_quantity").
		Values(uuid.New(), req.Title, req.Author, req.Quantity, req.Quantity).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return book, nil
}

// DecrementQuantity takes one copy off the shelf. The quantity > 0 guard
// makes the row-level update the only serialization point: with quantity=1
// two concurrent calls yield exactly one winner.
func (r *repository) DecrementQuantity(ctx context.Context, bookUid string) (model.Book, error) {
	q := `
update books
	set quantity = quantity - 1
where book_uid = $1 and quantity > 0
returning ` + bookColumns

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, bookUid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// unknown book and exhausted book both match zero rows
			if _, getErr := r.GetBook(ctx, bookUid); getErr != nil {
				return model.Book{}, getErr
			}
			return model.Book{}, errs.ErrBookUnavailable
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) IncrementQuantity(ctx context.Context, bookUid string) error {
	q := `
update books
	set quantity = quantity + 1
where book_uid = $1`

	res, err := r.db.ExecContext(ctx, q, bookUid)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	base := qb.Select().From(booksTableName)
	if filter.Title != "" {
		base = base.Where(sq.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Author != "" {
		base = base.Where(sq.ILike{"author": "%" + filter.Author + "%"})
	}

	countQuery, countArgs, err := base.Columns("count(*)").ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return model.ListBooks{}, err
	}

	query, args, err := base.
		Columns("id", "book_uid", "title", "author", "quantity", "initial_quantity").
		OrderBy("id").
		Limit(uint64(filter.Limit)).
		Offset(uint64((filter.Page - 1) * filter.Limit)).
		ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Items: books,
		Pagination: model.Paging{
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
			TotalItems:  total,
			TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		},
	}, nil
}
