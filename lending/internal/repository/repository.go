package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/pkg/auth"
	"github.com/bookhive/lending-service/pkg/kafka"
)

// Ledger owns the authoritative available quantity of every book.
// Decrement and Increment are single atomic steps; callers never hold a
// lock across them.
type Ledger interface {
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	DecrementQuantity(ctx context.Context, bookUid string) (model.Book, error)
	IncrementQuantity(ctx context.Context, bookUid string) error
	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
}

// RecordStore is the append-only loan ledger. MarkReturned is a
// compare-and-swap on the returned flag, so duplicate calls are absorbed.
type RecordStore interface {
	CreateRecord(ctx context.Context, book model.Book, id auth.Identity) (model.BorrowRecord, error)
	GetRecord(ctx context.Context, recordUid string) (model.BorrowRecord, error)
	MarkReturned(ctx context.Context, recordUid string) error
	ListRecordsByUser(ctx context.Context, userID int) ([]model.BorrowRecord, error)
}

type Users interface {
	CreateUser(ctx context.Context, username, passwordHash string) (model.User, error)
	GetUser(ctx context.Context, username string) (model.User, error)
}

type Stats interface {
	RecordEvent(ctx context.Context, event kafka.LendingEvent) error
	GetStats(ctx context.Context) (model.StatsInfo, error)
}

type Repository interface {
	Ledger
	RecordStore
	Users
	Stats
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (Repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName   = `books`
	recordsTableName = `borrow_records`
	usersTableName   = `users`
	eventsTableName  = `lending_events`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
