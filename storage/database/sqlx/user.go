package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/user"
)

const userColumns = "id, name, email, role, class_group, is_active, created_at, updated_at"

type userRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	Email      string      `db:"email"`
	Role       string      `db:"role"`
	ClassGroup null.String `db:"class_group"`
	IsActive   bool        `db:"is_active"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:         usr.ID,
		Name:       usr.Name,
		Email:      usr.Email,
		Role:       string(usr.Role),
		ClassGroup: null.NewString(usr.ClassGroup, usr.ClassGroup != ""),
		IsActive:   usr.IsActive,
		CreatedAt:  usr.CreatedAt,
		UpdatedAt:  usr.UpdatedAt,
	}
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Role:       user.Role(r.Role),
		ClassGroup: r.ClassGroup.String,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DBExecutor) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :name, :email, :role, :class_group, :is_active, :created_at, :updated_at)`,
		newUserRow(usr),
	)
	if isUniqueViolation(err) {
		return user.User{}, user.ErrEmailExists
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		args = append(args, filter.ID)
		conds = append(conds, "id = "+placeholder(len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, "email = "+placeholder(len(args)))
	}
	if len(conds) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+userColumns+" FROM users WHERE "+strings.Join(conds, " AND "), args...)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if len(filter.IDs) > 0 {
		ids := validUUIDs(filter.IDs)
		if len(ids) == 0 {
			return []user.User{}, nil
		}
		args = append(args, pq.Array(ids))
		conds = append(conds, "id = ANY("+placeholder(len(args))+"::uuid[])")
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, r := range filter.Roles {
			roles = append(roles, string(r))
		}
		args = append(args, pq.Array(roles))
		conds = append(conds, "role = ANY("+placeholder(len(args))+")")
	}
	if len(filter.ClassGroups) > 0 {
		args = append(args, pq.Array(filter.ClassGroups))
		conds = append(conds, "class_group = ANY("+placeholder(len(args))+")")
	}

	q := "SELECT " + userColumns + " FROM users"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at, email"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE users
		SET name = :name, email = :email, role = :role, class_group = :class_group,
		    is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`,
		newUserRow(usr),
	)
	if isUniqueViolation(err) {
		return user.User{}, user.ErrEmailExists
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
