package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/orbital-trader/internal/game"
	"github.com/talgya/orbital-trader/internal/ledger"
)

// SQLiteStore keeps save slots in a SQLite file.
type SQLiteStore struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &SQLiteStore{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *SQLiteStore) Close() error {
	return db.conn.Close()
}

func (db *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS save_slots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		day INTEGER NOT NULL,
		credits INTEGER NOT NULL,
		location_id TEXT NOT NULL,
		game_over INTEGER NOT NULL,
		state_json TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS finance_log (
		slot_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		amount INTEGER NOT NULL,
		balance INTEGER NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (slot_id, seq)
	);

	CREATE TABLE IF NOT EXISTS notices (
		id TEXT PRIMARY KEY,
		slot_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notices_slot ON notices(slot_id, day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Save writes the whole state, its finance log mirror and new notices in
// one transaction.
func (db *SQLiteStore) Save(ctx context.Context, slotID string, st *game.State) (string, error) {
	if slotID == "" {
		slotID = uuid.NewString()
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	slot := slotOf(slotID, st, time.Now())

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO save_slots
		(id, name, day, credits, location_id, game_over, state_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.ID, slot.Name, slot.Day, slot.Credits, slot.LocationID, slot.GameOver,
		string(data), slot.UpdatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("upsert slot %s: %w", slotID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM finance_log WHERE slot_id = ?", slotID); err != nil {
		return "", err
	}
	if st.Player != nil && len(st.Player.FinanceLog) > 0 {
		stmt, err := tx.PreparexContext(ctx, `INSERT INTO finance_log
			(slot_id, seq, day, category, amount, balance, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer stmt.Close()
		for i, e := range st.Player.FinanceLog {
			if _, err := stmt.ExecContext(ctx, slotID, i, e.Day, e.Category, e.Amount, e.Balance, e.Description); err != nil {
				return "", fmt.Errorf("insert finance entry %d: %w", i, err)
			}
		}
	}

	for _, n := range st.Notices {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO notices (id, slot_id, day, kind, title, body) VALUES (?, ?, ?, ?, ?, ?)",
			n.ID, slotID, n.Day, n.Kind, n.Title, n.Body,
		)
		if err != nil {
			return "", fmt.Errorf("insert notice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("game saved", "slot", slotID, "day", slot.Day, "credits", slot.Credits)
	return slotID, nil
}

// Load reads a slot back.
func (db *SQLiteStore) Load(ctx context.Context, slotID string) (*game.State, error) {
	var data string
	err := db.conn.GetContext(ctx, &data, "SELECT state_json FROM save_slots WHERE id = ?", slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", slotID, err)
	}
	var st game.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", slotID, err)
	}
	return &st, nil
}

type slotRow struct {
	Slot
	UpdatedUnix int64 `db:"updated_at"`
}

// List returns all slots, most recently saved first.
func (db *SQLiteStore) List(ctx context.Context) ([]Slot, error) {
	var rows []slotRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT id, name, day, credits, location_id, game_over, updated_at FROM save_slots ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, len(rows))
	for i, r := range rows {
		slots[i] = r.Slot
		slots[i].UpdatedAt = time.Unix(r.UpdatedUnix, 0)
	}
	return slots, nil
}

// Delete removes a slot and everything recorded for it.
func (db *SQLiteStore) Delete(ctx context.Context, slotID string) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM save_slots WHERE id = ?", slotID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	for _, table := range []string{"finance_log", "notices"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE slot_id = ?", slotID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// FinanceLog reads the mirrored log of a slot, newest first.
func (db *SQLiteStore) FinanceLog(ctx context.Context, slotID string, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	var entries []ledger.Entry
	err := db.conn.SelectContext(ctx, &entries,
		"SELECT day, category, amount, balance, description FROM finance_log WHERE slot_id = ? ORDER BY seq DESC LIMIT ?",
		slotID, limit,
	)
	return entries, err
}

// RecentNotices returns the latest notices journaled for a slot.
func (db *SQLiteStore) RecentNotices(ctx context.Context, slotID string, limit int) ([]game.Notice, error) {
	if limit <= 0 {
		limit = -1
	}
	var notices []game.Notice
	err := db.conn.SelectContext(ctx, &notices,
		"SELECT id, day, kind, title, body FROM notices WHERE slot_id = ? ORDER BY day DESC, rowid DESC LIMIT ?",
		slotID, limit,
	)
	return notices, err
}

// SaveMeta stores a key-value pair.
func (db *SQLiteStore) SaveMeta(key, value string) error {
	_, err := db.conn.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta retrieves a metadata value.
func (db *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
