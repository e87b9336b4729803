package ora

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"posgate.io/internal/auth"
	"posgate.io/internal/gateway"
)

func (s *Store) Grants(ctx context.Context, username string) ([]string, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		select grant_key
		from permission_grants
		where username = :username
		order by grant_key
	`, sql.Named("username", strings.ToLower(username)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		grants = append(grants, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return grants, nil
}

// ReplaceGrants swaps the full grant set for username atomically:
// delete everything, insert the new rows, commit.
func (s *Store) ReplaceGrants(ctx context.Context, username string, grants []string) error {
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

	var one int
	if err := tx.QueryRowContext(ctx,
		`select 1 from pos_users where username = :username`,
		sql.Named("username", username)).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gateway.ErrNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`delete from permission_grants where username = :username`,
		sql.Named("username", username)); err != nil {
		return err
	}
	for _, key := range grants {
		if _, err := tx.ExecContext(ctx, `
			insert into permission_grants (username, grant_key)
			values (:username, :grant_key)
		`, sql.Named("username", username), sql.Named("grant_key", key)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) StoreAccess(ctx context.Context, username string) (auth.StoreAccess, error) {
	if s.db == nil {
		return auth.StoreAccess{}, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	username = strings.ToLower(username)

	var allStores int
	err := s.db.QueryRowContext(ctx,
		`select all_stores from pos_users where username = :username`,
		sql.Named("username", username)).Scan(&allStores)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.StoreAccess{}, gateway.ErrNotFound
	}
	if err != nil {
		return auth.StoreAccess{}, err
	}
	if allStores != 0 {
		return auth.StoreAccess{AllStores: true}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		select store_code
		from store_access
		where username = :username
		order by store_code
	`, sql.Named("username", username))
	if err != nil {
		return auth.StoreAccess{}, err
	}
	defer rows.Close()

	var access auth.StoreAccess
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return auth.StoreAccess{}, err
		}
		access.Stores = append(access.Stores, code)
	}
	if err := rows.Err(); err != nil {
		return auth.StoreAccess{}, err
	}
	return access, nil
}

func (s *Store) ReplaceStoreAccess(ctx context.Context, username string, access auth.StoreAccess) error {
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

	allStores := 0
	if access.AllStores {
		allStores = 1
	}
	res, err := tx.ExecContext(ctx,
		`update pos_users set all_stores = :all_stores, updated_at = systimestamp where username = :username`,
		sql.Named("all_stores", allStores), sql.Named("username", username))
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

	if _, err := tx.ExecContext(ctx,
		`delete from store_access where username = :username`,
		sql.Named("username", username)); err != nil {
		return err
	}
	if !access.AllStores {
		for _, code := range access.Stores {
			if _, err := tx.ExecContext(ctx, `
				insert into store_access (username, store_code)
				values (:username, :store_code)
			`, sql.Named("username", username), sql.Named("store_code", code)); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
