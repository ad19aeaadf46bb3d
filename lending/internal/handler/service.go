package handler

import (
	"context"

	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/lending/internal/service"
	"github.com/bookhive/lending-service/pkg/auth"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LendingService interface {
	Borrow(ctx context.Context, bookUid string, id auth.Identity) (model.BorrowRecord, error)
	Return(ctx context.Context, recordUid string, id auth.Identity) error
	ListBooks(ctx context.Context, filter model.BookFilter) (model.ListBooks, error)
	AddBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	ListRecords(ctx context.Context, id auth.Identity) ([]model.BorrowRecord, error)
}

type AuthService interface {
	Register(ctx context.Context, req model.UserCreateRequest) error
	Login(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error)
}

type StatsService interface {
	GetStats(ctx context.Context) (model.StatsInfo, error)
}

var (
	_ LendingService = (*service.Service)(nil)
	_ AuthService    = (*service.AuthService)(nil)
	_ StatsService   = (*service.StatsService)(nil)
)
