package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pratocheio/internal/utils"
	"pratocheio/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"email": strings.TrimSpace(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user-by-email query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	return &user, nil
}

// Create inserts the user under a freshly generated 6-digit ID,
// retrying with a new ID when the key collides with an existing row.
func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	for attempt := 0; attempt < createMaxAttempts; attempt++ {
		user.ID = utils.NumericID()

		query, args, err := psql().
			Insert(userTableName).
			SetMap(utils.StructToMap(user)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate create user query: %w", err)
		}

		_, err = r.pool.Exec(ctx, query, args...)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return fmt.Errorf("failed to create user: exhausted %d id attempts", createMaxAttempts)
}

// Update applies the non-nil fields of update to the stored row. The
// boolean reports whether a row matched the id.
func (r *UserRepository) Update(ctx context.Context, userID string, update *types.UserUpdate) (bool, error) {
	setMap := map[string]any{
		"updated_at": time.Now(),
	}
	if update.Nome != nil {
		setMap["nome"] = *update.Nome
	}
	if update.Email != nil {
		setMap["email"] = strings.TrimSpace(*update.Email)
	}
	if update.SenhaHash != nil {
		setMap["senha_hash"] = *update.SenhaHash
	}
	if update.Tipo != nil {
		setMap["tipo"] = *update.Tipo
	}
	if update.BairroOuDistrito != nil {
		setMap["bairro_ou_distrito"] = *update.BairroOuDistrito
	}
	if update.Cidade != nil {
		setMap["cidade"] = *update.Cidade
	}

	query, args, err := psql().
		Update(userTableName).
		SetMap(setMap).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate update user query for user %s: %w", userID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) (bool, error) {
	query, args, err := psql().
		Delete(userTableName).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate delete user query for user %s: %w", userID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, utils.ErrorWrapOrNil(err, "failed to delete user")
	}

	return tag.RowsAffected() > 0, nil
}
