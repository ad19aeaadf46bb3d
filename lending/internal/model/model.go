package model

import (
	"time"
)

type Book struct {
	ID              int    `json:"-" db:"id"`
	BookUid         string `json:"bookUid" db:"book_uid"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	Quantity        int    `json:"quantity" db:"quantity"`
	InitialQuantity int    `json:"-" db:"initial_quantity"`
}

type CreateBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// BookFilter is the full cache key space for catalog listings: two
// substring filters plus paging.
type BookFilter struct {
	Title  string
	Author string
	Page   int
	Limit  int
}

const (
	defaultPage  = 1
	defaultLimit = 5
	maxLimit     = 100
)

// Normalize clamps paging so that equivalent requests share one cache entry.
func (f BookFilter) Normalize() BookFilter {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

type Paging struct {
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
}

type ListBooks struct {
	Items      []Book `json:"items"`
	Pagination Paging `json:"pagination"`
}

// BorrowRecord is an append-only loan entry. Book title and username are
// immutable snapshots taken at borrow time, not live references.
type BorrowRecord struct {
	ID         int        `json:"-" db:"id"`
	RecordUid  string     `json:"recordUid" db:"record_uid"`
	BookUid    string     `json:"bookUid" db:"book_uid"`
	BookTitle  string     `json:"bookTitle" db:"book_title"`
	UserID     int        `json:"-" db:"user_id"`
	Username   string     `json:"username" db:"username"`
	BorrowDate time.Time  `json:"borrowDate" db:"borrow_date"`
	Returned   bool       `json:"returned" db:"returned"`
	ReturnDate *time.Time `json:"returnDate" db:"return_date"`
}

type BorrowRequest struct {
	BookUid string `json:"bookUid" validate:"required"`
}

type User struct {
	ID           int    `json:"-" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type UserStats struct {
	Username  string    `json:"username" db:"username"`
	Borrows   int       `json:"borrows" db:"borrows"`
	Returns   int       `json:"returns" db:"returns"`
	LastEvent time.Time `json:"lastEvent" db:"last_event"`
}

type StatsInfo struct {
	Data []UserStats `json:"data"`
}
