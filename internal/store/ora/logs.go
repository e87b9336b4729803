package ora

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"posgate.io/internal/gateway"
)

// Column widths in audit_logs. Oversized values are clipped on insert,
// never rejected: a log write must not fail the request it describes.
const (
	maxLogUsername   = 64
	maxLogRoute      = 64
	maxLogParameters = 2000
	maxLogResult     = 200
	maxLogToken      = 255
	maxLogIP         = 60
	maxLogMethod     = 64
)

func (s *Store) InsertLog(ctx context.Context, e *gateway.LogEntry) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	when := e.Timestamp
	if when.IsZero() {
		when = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into audit_logs (event_time, username, route, parameters, result, token, ip, method)
		values (:event_time, :username, :route, :parameters, :result, :token, :ip, :method)
	`,
		sql.Named("event_time", when),
		sql.Named("username", clip(strings.ToLower(e.Username), maxLogUsername)),
		sql.Named("route", clip(e.Route, maxLogRoute)),
		sql.Named("parameters", clip(e.Parameters, maxLogParameters)),
		sql.Named("result", clip(e.Result, maxLogResult)),
		sql.Named("token", clip(e.Token, maxLogToken)),
		sql.Named("ip", clip(e.IP, maxLogIP)),
		sql.Named("method", clip(e.Method, maxLogMethod)),
	)
	return err
}

func (s *Store) ListLogs(ctx context.Context, limit int) ([]gateway.LogEntry, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		select id, event_time, username, route, parameters, result, token, ip, method
		from (
			select id, event_time, username, route, parameters, result, token, ip, method
			from audit_logs
			order by id desc
		)
		where rownum <= :lim
	`, sql.Named("lim", capLimit(limit)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func (s *Store) ListLogsByUser(ctx context.Context, username string, limit int) ([]gateway.LogEntry, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
		select id, event_time, username, route, parameters, result, token, ip, method
		from (
			select id, event_time, username, route, parameters, result, token, ip, method
			from audit_logs
			where username = :username
			order by id desc
		)
		where rownum <= :lim
	`, sql.Named("username", strings.ToLower(username)), sql.Named("lim", capLimit(limit)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

// DeleteLog removes one entry by id. Deleting an absent id is not an
// error; the affected count tells the caller what happened.
func (s *Store) DeleteLog(ctx context.Context, id int64) (int64, error) {
	if s.db == nil {
		return 0, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx,
		`delete from audit_logs where id = :id`, sql.Named("id", id))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteLogsByUser removes entries for username, oldest first when a
// positive limit caps the sweep.
func (s *Store) DeleteLogsByUser(ctx context.Context, username string, limit int) (int64, error) {
	if s.db == nil {
		return 0, errors.New("database connection unavailable")
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	username = strings.ToLower(username)

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = s.db.ExecContext(ctx, `
			delete from audit_logs
			where id in (
				select id from (
					select id from audit_logs
					where username = :username
					order by id
				)
				where rownum <= :lim
			)
		`, sql.Named("username", username), sql.Named("lim", limit))
	} else {
		res, err = s.db.ExecContext(ctx,
			`delete from audit_logs where username = :username`,
			sql.Named("username", username))
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectLogs(rows *sql.Rows) ([]gateway.LogEntry, error) {
	entries := []gateway.LogEntry{}
	for rows.Next() {
		var (
			e             gateway.LogEntry
			username      sql.NullString
			route, params sql.NullString
			result, token sql.NullString
			ip, method    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &username, &route, &params, &result, &token, &ip, &method); err != nil {
			return nil, err
		}
		e.Username = username.String
		e.Route = route.String
		e.Parameters = params.String
		e.Result = result.String
		e.Token = token.String
		e.IP = ip.String
		e.Method = method.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func capLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 100
	}
	return limit
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
