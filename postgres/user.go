package postgres

import (
	"context"

	"github.com/camguard/camguard"
)

const userCols = `users.id, users.email, users.full_name, users.token, users.is_active, users.is_superuser, users.company_id, users.created_at, users.updated_at`

var userFields = map[string]string{
	"id":           "users.id",
	"email":        "users.email",
	"full_name":    "users.full_name",
	"is_active":    "users.is_active",
	"is_superuser": "users.is_superuser",
	"company_id":   "users.company_id",
	"created_at":   "users.created_at",
	"updated_at":   "users.updated_at",
}

func scanUser(sc scanner) (*camguard.User, error) {
	var u camguard.User
	err := sc.Scan(&u.ID, &u.Email, &u.FullName, &u.Token, &u.IsActive,
		&u.IsSuperuser, &u.CompanyID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) CreateUser(ctx context.Context, in camguard.UserInput, token string) (*camguard.User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (email, full_name, token, is_superuser, company_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+userCols,
		in.Email, in.FullName, token, in.IsSuperuser, in.CompanyID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, storeErr("insert user", err)
	}
	return u, nil
}

func (s *PGStore) GetUser(ctx context.Context, id int64) (*camguard.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1 AND deleted = FALSE`, id)
	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get user", err)
	}
	return u, nil
}

// GetUserByToken resolves an API token to its active user.
func (s *PGStore) GetUserByToken(ctx context.Context, token string) (*camguard.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE token = $1 AND is_active = TRUE AND deleted = FALSE`, token)
	u, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get user by token", err)
	}
	return u, nil
}

func (s *PGStore) ListUsers(ctx context.Context, q camguard.ListQuery) ([]*camguard.User, error) {
	b := &builder{}
	conds, err := b.where("users", q, userFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("users", q, userFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+userCols+` FROM users`+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	out := []*camguard.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("scan user", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows users", err)
	}
	return out, nil
}
