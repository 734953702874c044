package registry

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"rifttracker/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadAccounts(ctx context.Context) ([]TrackedAccount, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, game_name, tag_line, puuid, summoner_id, added_by, notify_target, added_at FROM accounts ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackedAccount
	for rows.Next() {
		var a TrackedAccount
		var addedAt string
		if err := rows.Scan(&a.Key, &a.GameName, &a.TagLine, &a.PUUID, &a.SummonerID, &a.AddedBy, &a.NotifyTarget, &addedAt); err != nil {
			return nil, err
		}
		if addedAt != "" {
			if t, perr := time.Parse(time.RFC3339Nano, addedAt); perr == nil {
				a.AddedAt = t
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveAccounts(ctx context.Context, accounts []TrackedAccount) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return err
	}
	for _, a := range accounts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts(key, game_name, tag_line, puuid, summoner_id, added_by, notify_target, added_at)
			 VALUES(?,?,?,?,?,?,?,?)`,
			a.Key, a.GameName, a.TagLine, a.PUUID, a.SummonerID, a.AddedBy, a.NotifyTarget,
			a.AddedAt.Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadLastSeen(ctx context.Context) (map[string]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT puuid, match_id FROM last_seen`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var puuid, matchID string
		if err := rows.Scan(&puuid, &matchID); err != nil {
			return nil, err
		}
		out[puuid] = matchID
	}
	return out, rows.Err()
}

func (s *sqliteStore) SaveLastSeen(ctx context.Context, lastSeen map[string]string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM last_seen`); err != nil {
		return err
	}
	for puuid, matchID := range lastSeen {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO last_seen(puuid, match_id) VALUES(?,?)`, puuid, matchID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
