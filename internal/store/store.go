package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PolarWolf314/tact/internal/bundle"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// DatabaseName is the file name of the store inside the data directory.
const DatabaseName = "tact.db"

// Store is a SQLite-backed profile and record store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LocalUser returns the device's active profile, creating a default one
// on first use.
func (s *Store) LocalUser(ctx context.Context) (bundle.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return bundle.User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", localUserKey).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return bundle.User{}, fmt.Errorf("reading local user id: %w", err)
	}

	if id != "" {
		u, err := getUser(ctx, tx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, kerrors.ErrUserNotFound) {
			return bundle.User{}, err
		}
	} else {
		id = uuid.NewString()
	}

	u := bundle.User{ID: id, Name: DefaultUserName, Email: DefaultUserEmail}
	if err := putUser(ctx, tx, u); err != nil {
		return bundle.User{}, err
	}
	if err := setLocalUser(ctx, tx, id); err != nil {
		return bundle.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return bundle.User{}, fmt.Errorf("committing local user: %w", err)
	}
	return u, nil
}

// GetUser returns the profile with the given id.
func (s *Store) GetUser(ctx context.Context, id string) (bundle.User, error) {
	return getUser(ctx, s.db, id)
}

// UpdateUser overwrites the name and email of an existing profile.
func (s *Store) UpdateUser(ctx context.Context, u bundle.User) (bundle.User, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET name = ?, email = ? WHERE user_id = ?", u.Name, u.Email, u.ID)
	if err != nil {
		return bundle.User{}, fmt.Errorf("updating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return bundle.User{}, fmt.Errorf("%w: %s", kerrors.ErrUserNotFound, u.ID)
	}
	return u, nil
}

// AddRecord stores a new record for ownerID and returns it with its id
// and timestamps assigned.
func (s *Store) AddRecord(ctx context.Context, ownerID string, r bundle.Record) (bundle.Record, error) {
	if _, err := s.GetUser(ctx, ownerID); err != nil {
		return bundle.Record{}, err
	}

	now := bundle.NormalizeTime(s.now())
	r.ID = uuid.NewString()
	r.OwnerID = ownerID
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := putRecord(ctx, s.db, r); err != nil {
		return bundle.Record{}, err
	}
	return r, nil
}

// GetRecord returns the record with the given id.
func (s *Store) GetRecord(ctx context.Context, id string) (bundle.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+" WHERE record_id = ?", id)
	if err != nil {
		return bundle.Record{}, fmt.Errorf("querying record: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return bundle.Record{}, err
	}
	if len(records) == 0 {
		return bundle.Record{}, fmt.Errorf("%w: %s", kerrors.ErrRecordNotFound, id)
	}
	return records[0], nil
}

// ListRecords returns every record owned by ownerID, oldest first.
func (s *Store) ListRecords(ctx context.Context, ownerID string) ([]bundle.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+" WHERE owner_id = ? ORDER BY created_at, record_id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	return scanRecords(rows)
}

// SearchRecords returns records of ownerID whose title or content
// contains term, ignoring case.
func (s *Store) SearchRecords(ctx context.Context, ownerID, term string) ([]bundle.Record, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.db.QueryContext(ctx,
		selectRecords+" WHERE owner_id = ? AND (lower(title) LIKE ? OR lower(content) LIKE ?) ORDER BY created_at, record_id",
		ownerID, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	return scanRecords(rows)
}

// RecordsByTag returns records of ownerID carrying tag.
func (s *Store) RecordsByTag(ctx context.Context, ownerID, tag string) ([]bundle.Record, error) {
	all, err := s.ListRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []bundle.Record
	for _, r := range all {
		for _, t := range r.Tags {
			if t == tag {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

// Tags returns the distinct tags used by ownerID's records, sorted.
func (s *Store) Tags(ctx context.Context, ownerID string) ([]string, error) {
	all, err := s.ListRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var tags []string
	for _, r := range all {
		for _, t := range r.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// DeleteRecord removes a record.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE record_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", kerrors.ErrRecordNotFound, id)
	}
	return nil
}

// ReplaceOwnerData swaps everything stored for owner with the given
// profile and records and makes owner the local user. It runs in one
// transaction: on failure nothing changes.
func (s *Store) ReplaceOwnerData(ctx context.Context, owner bundle.User, records []bundle.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE owner_id = ?", owner.ID); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", owner.ID); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}
	if err := putUser(ctx, tx, owner); err != nil {
		return err
	}
	for _, r := range records {
		r.OwnerID = owner.ID
		if err := putRecord(ctx, tx, r); err != nil {
			return err
		}
	}
	if err := setLocalUser(ctx, tx, owner.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// execer is the subset of *sql.DB and *sql.Tx the helpers need.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getUser(ctx context.Context, q execer, id string) (bundle.User, error) {
	u := bundle.User{ID: id}
	err := q.QueryRowContext(ctx, "SELECT name, email FROM users WHERE user_id = ?", id).Scan(&u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return bundle.User{}, fmt.Errorf("%w: %s", kerrors.ErrUserNotFound, id)
	}
	if err != nil {
		return bundle.User{}, fmt.Errorf("reading user: %w", err)
	}
	return u, nil
}

func putUser(ctx context.Context, q execer, u bundle.User) error {
	_, err := q.ExecContext(ctx,
		"INSERT OR REPLACE INTO users (user_id, name, email) VALUES (?, ?, ?)",
		u.ID, u.Name, u.Email)
	if err != nil {
		return fmt.Errorf("writing user: %w", err)
	}
	return nil
}

func setLocalUser(ctx context.Context, q execer, id string) error {
	_, err := q.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", localUserKey, id)
	if err != nil {
		return fmt.Errorf("writing local user id: %w", err)
	}
	return nil
}

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000Z"

const selectRecords = `SELECT record_id, owner_id, title, content, emoji, importance, is_encrypted, tags, created_at, updated_at FROM records`

func putRecord(ctx context.Context, q execer, r bundle.Record) error {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT OR REPLACE INTO records
		    (record_id, owner_id, title, content, emoji, importance, is_encrypted, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Title, r.Content, r.Emoji, r.Importance, r.Encrypted,
		string(encodedTags), formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("writing record %s: %w", r.ID, err)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]bundle.Record, error) {
	defer rows.Close()

	var out []bundle.Record
	for rows.Next() {
		var (
			r                bundle.Record
			tags             string
			created, updated string
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Title, &r.Content, &r.Emoji, &r.Importance,
			&r.Encrypted, &tags, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags of %s: %w", r.ID, err)
		}
		if len(r.Tags) == 0 {
			r.Tags = nil
		}
		var err error
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return bundle.NormalizeTime(t), nil
}
