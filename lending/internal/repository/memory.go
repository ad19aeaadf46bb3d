package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/pkg/auth"
)

// Memory is an in-process Ledger, RecordStore and Users backed by maps.
// Every ledger mutation is a single step under the mutex, mirroring the
// row-level atomicity of the postgres implementation.
type Memory struct {
	mu           sync.Mutex
	books        map[string]*model.Book
	records      map[string]*model.BorrowRecord
	users        map[string]*model.User
	nextBookID   int
	nextRecordID int
	nextUserID   int
}

var (
	_ Ledger      = (*Memory)(nil)
	_ RecordStore = (*Memory)(nil)
	_ Users       = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		books:   make(map[string]*model.Book),
		records: make(map[string]*model.BorrowRecord),
		users:   make(map[string]*model.User),
	}
}

func (m *Memory) GetBook(_ context.Context, bookUid string) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[bookUid]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return *book, nil
}

func (m *Memory) CreateBook(_ context.Context, req model.CreateBookRequest) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBookID++
	book := &model.Book{
		ID:              m.nextBookID,
		BookUid:         uuid.NewString(),
		Title:           req.Title,
		Author:          req.Author,
		Quantity:        req.Quantity,
		InitialQuantity: req.Quantity,
	}
	m.books[book.BookUid] = book
	return *book, nil
}

func (m *Memory) DecrementQuantity(_ context.Context, bookUid string) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[bookUid]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	if book.Quantity == 0 {
		return model.Book{}, errs.ErrBookUnavailable
	}
	book.Quantity--
	return *book, nil
}

func (m *Memory) IncrementQuantity(_ context.Context, bookUid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[bookUid]
	if !ok {
		return errs.ErrNotFound
	}
	book.Quantity++
	return nil
}

func (m *Memory) ListBooks(_ context.Context, filter model.BookFilter) (model.ListBooks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]model.Book, 0, len(m.books))
	for _, book := range m.books {
		if filter.Title != "" && !strings.Contains(strings.ToLower(book.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Author != "" && !strings.Contains(strings.ToLower(book.Author), strings.ToLower(filter.Author)) {
			continue
		}
		matched = append(matched, *book)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	from := (filter.Page - 1) * filter.Limit
	if from > total {
		from = total
	}
	to := from + filter.Limit
	if to > total {
		to = total
	}

	return model.ListBooks{
		Items: matched[from:to],
		Pagination: model.Paging{
			CurrentPage: filter.Page,
			Limit:       filter.Limit,
			TotalItems:  total,
			TotalPages:  (total + filter.Limit - 1) / filter.Limit,
		},
	}, nil
}

func (m *Memory) CreateRecord(_ context.Context, book model.Book, id auth.Identity) (model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRecordID++
	rec := &model.BorrowRecord{
		ID:         m.nextRecordID,
		RecordUid:  uuid.NewString(),
		BookUid:    book.BookUid,
		BookTitle:  book.Title,
		UserID:     id.UserID,
		Username:   id.Username,
		BorrowDate: time.Now().UTC(),
	}
	m.records[rec.RecordUid] = rec
	return *rec, nil
}

func (m *Memory) GetRecord(_ context.Context, recordUid string) (model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recordUid]
	if !ok {
		return model.BorrowRecord{}, errs.ErrNotFound
	}
	return *rec, nil
}

func (m *Memory) MarkReturned(_ context.Context, recordUid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[recordUid]
	if !ok {
		return errs.ErrNotFound
	}
	if rec.Returned {
		return errs.ErrAlreadyReturned
	}
	now := time.Now().UTC()
	rec.Returned = true
	rec.ReturnDate = &now
	return nil
}

func (m *Memory) ListRecordsByUser(_ context.Context, userID int) ([]model.BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]model.BorrowRecord, 0)
	for _, rec := range m.records {
		if rec.UserID == userID {
			items = append(items, *rec)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *Memory) CreateUser(_ context.Context, username, passwordHash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return model.User{}, errs.ErrUserExists
	}
	m.nextUserID++
	user := &model.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "user",
	}
	m.users[username] = user
	return *user, nil
}

func (m *Memory) GetUser(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[username]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return *user, nil
}
