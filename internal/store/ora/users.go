package ora

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"posgate.io/internal/gateway"
)

func (s *Store) CreateUser(ctx context.Context, u *gateway.User) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	username := strings.ToLower(u.Username)
	_, err := s.db.ExecContext(ctx, `
		insert into pos_users (username, name, email, login_duration, password_hash, all_stores, created_at, updated_at)
		values (:username, :name, :email, :login_duration, :password_hash, 0, systimestamp, systimestamp)
	`,
		sql.Named("username", username),
		sql.Named("name", u.Name),
		sql.Named("email", u.Email),
		sql.Named("login_duration", u.LoginDuration),
		sql.Named("password_hash", u.PasswordHash),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return gateway.ErrExists
		}
		return err
	}
	u.Username = username
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (gateway.User, error) {
	if s.db == nil {
		return gateway.User{}, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var (
		u           gateway.User
		name, email sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		select username, name, email, login_duration, password_hash, created_at, updated_at
		from pos_users
		where username = :username
	`, sql.Named("username", strings.ToLower(username))).
		Scan(&u.Username, &name, &email, &u.LoginDuration, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.User{}, gateway.ErrNotFound
	}
	if err != nil {
		return gateway.User{}, err
	}
	u.Name = name.String
	u.Email = email.String
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]gateway.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		select username, name, email, login_duration, created_at, updated_at
		from pos_users
		order by username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []gateway.User
	for rows.Next() {
		var (
			u           gateway.User
			name, email sql.NullString
		)
		if err := rows.Scan(&u.Username, &name, &email, &u.LoginDuration, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Name = name.String
		u.Email = email.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, username string, upd gateway.UserUpdate) (gateway.User, error) {
	if s.db == nil {
		return gateway.User{}, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	username = strings.ToLower(username)

	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		sets = append(sets, "name = :name")
		args = append(args, sql.Named("name", *upd.Name))
	}
	if upd.Email != nil {
		sets = append(sets, "email = :email")
		args = append(args, sql.Named("email", *upd.Email))
	}
	if upd.LoginDuration != nil {
		sets = append(sets, "login_duration = :login_duration")
		args = append(args, sql.Named("login_duration", *upd.LoginDuration))
	}
	if upd.Password != nil {
		sets = append(sets, "password_hash = :password_hash")
		args = append(args, sql.Named("password_hash", *upd.Password))
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = systimestamp")
		query := fmt.Sprintf(`update pos_users set %s where username = :username`, strings.Join(sets, ", "))
		args = append(args, sql.Named("username", username))
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return gateway.User{}, err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return gateway.User{}, err
		}
		if aff == 0 {
			return gateway.User{}, gateway.ErrNotFound
		}
	}
	return s.GetUser(ctx, username)
}

// DeleteUser removes the identity row together with its permission and
// store-access grants in one transaction.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	username = strings.ToLower(username)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`delete from permission_grants where username = :username`,
		sql.Named("username", username)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`delete from store_access where username = :username`,
		sql.Named("username", username)); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`delete from pos_users where username = :username`,
		sql.Named("username", username))
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return gateway.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	if s.db == nil {
		return false, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var one int
	err := s.db.QueryRowContext(ctx,
		`select 1 from pos_users where username = :username`,
		sql.Named("username", strings.ToLower(username))).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
