package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/cache"
	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/lending/internal/repository"
	"github.com/bookhive/lending-service/pkg/auth"
	"github.com/bookhive/lending-service/pkg/kafka"
)

// Service coordinates the book ledger and the borrow record store so that
// for every book
//
//	quantity + outstanding records == initial quantity
//
// holds after any sequence of Borrow and Return calls.
type Service struct {
	log     *zap.Logger
	ledger  repository.Ledger
	records repository.RecordStore
	catalog *cache.CatalogCache
	events  Publisher
}

func NewService(ledger repository.Ledger, records repository.RecordStore, catalog *cache.CatalogCache, events Publisher, log *zap.Logger) *Service {
	return &Service{
		log:     log,
		ledger:  ledger,
		records: records,
		catalog: catalog,
		events:  events,
	}
}

// Borrow takes one copy off the shelf and opens an outstanding record for
// it. The decrement is the only contended step; if the record cannot be
// persisted afterwards, the decrement is compensated so the ledger and the
// record store never disagree.
func (s *Service) Borrow(ctx context.Context, bookUid string, id auth.Identity) (model.BorrowRecord, error) {
	book, err := s.ledger.DecrementQuantity(ctx, bookUid)
	if err != nil {
		return model.BorrowRecord{}, err
	}

	rec, err := s.records.CreateRecord(ctx, book, id)
	if err != nil {
		if incErr := s.ledger.IncrementQuantity(ctx, bookUid); incErr != nil {
			s.log.Error("borrow compensation failed",
				zap.String("bookUid", bookUid), zap.Error(incErr))
		}
		return model.BorrowRecord{}, err
	}

	s.catalog.Invalidate()
	s.publish(kafka.EventBorrowed, rec)
	return rec, nil
}

// Return closes an outstanding record and puts the copy back on the shelf.
// Repeating the call is a no-op: the record store's compare-and-swap makes
// sure the quantity is incremented exactly once per record.
func (s *Service) Return(ctx context.Context, recordUid string, id auth.Identity) error {
	rec, err := s.records.GetRecord(ctx, recordUid)
	if err != nil {
		return err
	}
	if rec.UserID != id.UserID {
		return errs.ErrForbidden
	}
	if rec.Returned {
		return nil
	}

	if err := s.records.MarkReturned(ctx, recordUid); err != nil {
		if errors.Is(err, errs.ErrAlreadyReturned) {
			// a concurrent duplicate won the swap and does the increment
			return nil
		}
		return err
	}
	if err := s.ledger.IncrementQuantity(ctx, rec.BookUid); err != nil {
		return err
	}

	s.catalog.Invalidate()
	s.publish(kafka.EventReturned, rec)
	return nil
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error) {
	filter = filter.Normalize()
	if list, ok := s.catalog.Get(filter); ok {
		return list, nil
	}

	list, err := s.ledger.ListBooks(ctx, filter)
	if err != nil {
		return model.ListBooks{}, err
	}
	s.catalog.Set(filter, list)
	return list, nil
}

func (s *Service) AddBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book, err := s.ledger.CreateBook(ctx, req)
	if err != nil {
		return model.Book{}, err
	}
	s.catalog.Invalidate()
	return book, nil
}

func (s *Service) ListRecords(ctx context.Context, id auth.Identity) ([]model.BorrowRecord, error) {
	return s.records.ListRecordsByUser(ctx, id.UserID)
}

// publish is fire-and-forget: the event stream being down must never fail
// a borrow or return that already committed.
func (s *Service) publish(eventType kafka.EventType, rec model.BorrowRecord) {
	if s.events == nil {
		return
	}
	event := kafka.LendingEvent{
		EventType: eventType,
		RecordUid: rec.RecordUid,
		BookUid:   rec.BookUid,
		UserName:  rec.Username,
		Timestamp: rec.BorrowDate,
	}
	if eventType == kafka.EventReturned {
		if rec.ReturnDate != nil {
			event.Timestamp = *rec.ReturnDate
		} else {
			event.Timestamp = time.Now().UTC()
		}
	}
	if err := s.events.Publish(kafka.LendingTopic, event); err != nil {
		s.log.Warn("publish lending event", zap.String("recordUid", rec.RecordUid), zap.Error(err))
	}
}
