package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
)

func (r *repository) CreateUser(ctx context.Context, username, passwordHash string) (model.User, error) {
	query, args, err := qb.Insert(usersTableName).
		Columns("username", "password_hash").
		Values(username, passwordHash).
		Suffix("returning id, username, password_hash, role").
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.User{}, errs.ErrUserExists
		}
		r.log.Error("CreateUser", zap.String("username", username), zap.Error(err))
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetUser(ctx context.Context, username string) (model.User, error) {
	query, args, err := qb.Select("id", "username", "password_hash", "role").
		From(usersTableName).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
