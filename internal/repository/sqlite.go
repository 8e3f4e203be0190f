package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/snackcounter/internal/models"
)

// timeLayout is fixed width so that created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository provides snack data access backed by SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, now: time.Now}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snacks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL CHECK (price >= 0),
			category TEXT NOT NULL,
			img TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snacks_created ON snacks(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) timestamp() string {
	return r.now().UTC().Format(timeLayout)
}

// parseID converts an opaque identifier into a row id. Anything that is not a
// positive integer cannot exist in this store.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnack(row rowScanner) (*models.Snack, error) {
	var (
		s                    models.Snack
		id                   int64
		category             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &s.Name, &s.Price, &category, &s.Img, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.ID = strconv.FormatInt(id, 10)
	s.Category = models.Category(category)

	var err error
	if s.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for snack %d: %w", id, err)
	}
	if s.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for snack %d: %w", id, err)
	}
	return &s, nil
}

const snackColumns = `id, name, price, category, img, created_at, updated_at`

// ListSnacks returns all snacks, newest first
func (r *Repository) ListSnacks(ctx context.Context) ([]models.Snack, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+snackColumns+` FROM snacks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snacks := []models.Snack{}
	for rows.Next() {
		s, err := scanSnack(rows)
		if err != nil {
			return nil, err
		}
		snacks = append(snacks, *s)
	}
	return snacks, rows.Err()
}

// GetSnack retrieves a single snack by ID
func (r *Repository) GetSnack(ctx context.Context, id string) (*models.Snack, error) {
	rowID, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	s, err := scanSnack(r.db.QueryRowContext(ctx, `SELECT `+snackColumns+` FROM snacks WHERE id = ?`, rowID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSnack inserts a snack and returns the stored record
func (r *Repository) CreateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error) {
	ts := r.timestamp()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO snacks (name, price, category, img, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snack.Name, snack.Price, string(snack.Category), snack.Img, ts, ts)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetSnack(ctx, strconv.FormatInt(id, 10))
}

// UpdateSnack overwrites the mutable fields of an existing snack
func (r *Repository) UpdateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error) {
	rowID, ok := parseID(snack.ID)
	if !ok {
		return nil, ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE snacks SET name = ?, price = ?, category = ?, img = ?, updated_at = ?
		WHERE id = ?
	`, snack.Name, snack.Price, string(snack.Category), snack.Img, r.timestamp(), rowID)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetSnack(ctx, snack.ID)
}

// DeleteSnack permanently removes a snack
func (r *Repository) DeleteSnack(ctx context.Context, id string) error {
	rowID, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM snacks WHERE id = ?`, rowID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
