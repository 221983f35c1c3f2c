package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/pkg/metrics"
)

// Default SQLite connection settings.
const (
	defaultMaxOpenConns    = 8
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultBusyTimeout     = 5 * time.Second
	defaultJournalMode     = "WAL"
	defaultSynchronous     = "NORMAL"
)

// SQLiteSink implements Sink on a local SQLite database.
type SQLiteSink struct {
	conn *sql.DB

	path            string
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	busyTimeout     time.Duration
	journalMode     string
	synchronous     string
}

// OpenSQLite opens (creating and migrating if needed) a SQLite-backed sink.
// Use ":memory:" as path for an ephemeral database.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteSink, error) {
	s := &SQLiteSink{
		path:            path,
		maxOpenConns:    defaultMaxOpenConns,
		maxIdleConns:    defaultMaxIdleConns,
		connMaxLifetime: defaultConnMaxLifetime,
		busyTimeout:     defaultBusyTimeout,
		journalMode:     defaultJournalMode,
		synchronous:     defaultSynchronous,
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if err := migrateUp(path); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=%s&_synchronous=%s&_foreign_keys=on",
		path, s.busyTimeout.Milliseconds(), s.journalMode, s.synchronous)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		s.maxOpenConns = 1
		s.maxIdleConns = 1
	}
	conn.SetMaxOpenConns(s.maxOpenConns)
	conn.SetMaxIdleConns(s.maxIdleConns)
	conn.SetConnMaxLifetime(s.connMaxLifetime)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s.conn = conn

	// In-memory databases cannot be migrated through a second connection;
	// apply the schema directly.
	if path == ":memory:" {
		if err := applySchema(conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return s, nil
}

// WriteGame persists one game inside a single transaction. Every statement is
// an upsert keyed on the row's natural key, so retries after a failure or a
// reprocessed game leave identical state.
func (s *SQLiteSink) WriteGame(ctx context.Context, result *model.GameResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordSinkWriteSeconds(time.Since(start).Seconds())
	}()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordSinkWriteError()
		return fmt.Errorf("failed to begin write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := writeSnapshots(ctx, tx, result); err != nil {
		metrics.RecordSinkWriteError()
		return err
	}
	if err := writeShots(ctx, tx, result); err != nil {
		metrics.RecordSinkWriteError()
		return err
	}
	if err := writeLineups(ctx, tx, result); err != nil {
		metrics.RecordSinkWriteError()
		return err
	}
	if err := writeQuality(ctx, tx, result); err != nil {
		metrics.RecordSinkWriteError()
		return err
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordSinkWriteError()
		return fmt.Errorf("failed to commit write: %w", err)
	}
	return nil
}

func writeSnapshots(ctx context.Context, tx *sql.Tx, result *model.GameResult) error {
	const query = `
		INSERT INTO snapshots (
			game_id, entity_type, entity_id, event_ordinal,
			points, rebounds, assists, steals, blocks, turnovers, fouls,
			fgm, fga, tpm, tpa, ftm, fta,
			score_diff, is_leading, plus_minus, plus_minus_known
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, entity_type, entity_id, event_ordinal) DO UPDATE SET
			points=excluded.points, rebounds=excluded.rebounds,
			assists=excluded.assists, steals=excluded.steals,
			blocks=excluded.blocks, turnovers=excluded.turnovers,
			fouls=excluded.fouls, fgm=excluded.fgm, fga=excluded.fga,
			tpm=excluded.tpm, tpa=excluded.tpa, ftm=excluded.ftm,
			fta=excluded.fta, score_diff=excluded.score_diff,
			is_leading=excluded.is_leading, plus_minus=excluded.plus_minus,
			plus_minus_known=excluded.plus_minus_known
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range result.Snapshots {
		row := &result.Snapshots[i]
		st := &row.Stats
		if _, err := stmt.ExecContext(ctx,
			row.GameID, string(row.EntityType), row.EntityID, row.EventOrdinal,
			st.Points, st.Rebounds, st.Assists, st.Steals, st.Blocks, st.Turnovers, st.Fouls,
			st.FGM, st.FGA, st.TPM, st.TPA, st.FTM, st.FTA,
			row.ScoreDiff, row.IsLeading, row.PlusMinus, row.PlusMinusKnown,
		); err != nil {
			return fmt.Errorf("failed to upsert snapshot: %w", err)
		}
	}
	return nil
}

func writeShots(ctx context.Context, tx *sql.Tx, result *model.GameResult) error {
	const query = `
		INSERT INTO shots (game_id, event_ordinal, player_id, team_id, x, y, shot_type, zone, made)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, event_ordinal) DO UPDATE SET
			player_id=excluded.player_id, team_id=excluded.team_id,
			x=excluded.x, y=excluded.y, shot_type=excluded.shot_type,
			zone=excluded.zone, made=excluded.made
	`
	for i := range result.Shots {
		shot := &result.Shots[i]
		if _, err := tx.ExecContext(ctx, query,
			shot.GameID, shot.EventOrdinal, shot.PlayerID, shot.TeamID,
			shot.X, shot.Y, string(shot.Type), string(shot.Zone), shot.Made,
		); err != nil {
			return fmt.Errorf("failed to upsert shot: %w", err)
		}
	}
	return nil
}

func writeLineups(ctx context.Context, tx *sql.Tx, result *model.GameResult) error {
	const query = `
		INSERT INTO lineup_intervals (game_id, team_id, player_id, enter_ordinal, exit_ordinal)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id, team_id, player_id, enter_ordinal) DO UPDATE SET
			exit_ordinal=excluded.exit_ordinal
	`
	for i := range result.Lineups {
		iv := &result.Lineups[i]
		if _, err := tx.ExecContext(ctx, query,
			iv.GameID, iv.TeamID, iv.PlayerID, iv.EnterOrdinal, iv.ExitOrdinal,
		); err != nil {
			return fmt.Errorf("failed to upsert lineup interval: %w", err)
		}
	}
	return nil
}

func writeQuality(ctx context.Context, tx *sql.Tx, result *model.GameResult) error {
	if result.Quality == nil {
		return nil
	}
	// Warnings have no natural key; rewrite the game's set wholesale so a
	// reprocessed game does not double its warnings.
	if _, err := tx.ExecContext(ctx, `DELETE FROM quality_warnings WHERE game_id = ?`, result.GameID); err != nil {
		return fmt.Errorf("failed to clear quality warnings: %w", err)
	}
	const query = `
		INSERT INTO quality_warnings (game_id, seq, kind, ordinal, message)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, w := range result.Quality.Warnings {
		if _, err := tx.ExecContext(ctx, query,
			result.GameID, i, string(w.Kind), w.Ordinal, w.Message,
		); err != nil {
			return fmt.Errorf("failed to insert quality warning: %w", err)
		}
	}
	return nil
}

// SnapshotCount reports how many snapshot rows are stored for a game.
func (s *SQLiteSink) SnapshotCount(ctx context.Context, gameID string) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM snapshots WHERE game_id = ?`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// Shots reads back a game's classified shots ordered by ordinal.
func (s *SQLiteSink) Shots(ctx context.Context, gameID string) ([]model.ShotEvent, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT game_id, event_ordinal, player_id, team_id, x, y, shot_type, zone, made
		FROM shots WHERE game_id = ? ORDER BY event_ordinal
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var shots []model.ShotEvent
	for rows.Next() {
		var sh model.ShotEvent
		var st, zone string
		if err := rows.Scan(&sh.GameID, &sh.EventOrdinal, &sh.PlayerID, &sh.TeamID,
			&sh.X, &sh.Y, &st, &zone, &sh.Made); err != nil {
			return nil, fmt.Errorf("failed to scan shot: %w", err)
		}
		sh.Type = model.ShotType(st)
		sh.Zone = model.ShotZone(zone)
		shots = append(shots, sh)
	}
	return shots, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.conn.Close()
}
