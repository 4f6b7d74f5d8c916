package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/internal/repository/pgdb/converter"
	"github.com/techmart/backend/pkg/e"
)

const userColumns = `id, name, email, password_hash, is_admin, created_at`

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{
		pool: pool,
		conv: conv,
	}
}

// Create добавляет пользователя. Занятый email — e.ErrEmailTaken.
func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := u.conv.ToModel(user)
	query := `
		INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	var created converter.UserModel
	err := u.pool.QueryRow(ctx, query, model.Name, model.Email, model.PasswordHash, model.IsAdmin).
		Scan(&created.ID, &created.Name, &created.Email, &created.PasswordHash, &created.IsAdmin, &created.CreatedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmailTaken)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&created), nil
}

func (u *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return u.queryOne(ctx, query, email)
}

func (u *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return u.queryOne(ctx, query, id)
}

func (u *UserRepo) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := u.conv.ToModel(user)
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, is_admin = $5
		WHERE id = $1
		RETURNING ` + userColumns

	var updated converter.UserModel
	err := u.pool.QueryRow(ctx, query, model.ID, model.Name, model.Email, model.PasswordHash, model.IsAdmin).
		Scan(&updated.ID, &updated.Name, &updated.Email, &updated.PasswordHash, &updated.IsAdmin, &updated.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmailTaken)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&updated), nil
}

func (u *UserRepo) Delete(ctx context.Context, id int64) error {
	result, err := u.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
	}

	return nil
}

func (u *UserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	query := `
		SELECT ` + userColumns + `, COUNT(*) OVER() AS total
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := u.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var total int64
	users := make([]domain.User, 0)
	for rows.Next() {
		var model converter.UserModel
		err := rows.Scan(&model.ID, &model.Name, &model.Email, &model.PasswordHash, &model.IsAdmin, &model.CreatedAt, &total)
		if err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
		users = append(users, *u.conv.ToEntity(&model))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(users) == 0 {
		if err := u.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return users, total, nil
}

func (u *UserRepo) queryOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var model converter.UserModel
	err := u.pool.QueryRow(ctx, query, arg).
		Scan(&model.ID, &model.Name, &model.Email, &model.PasswordHash, &model.IsAdmin, &model.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&model), nil
}
