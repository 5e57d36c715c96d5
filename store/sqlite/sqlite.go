/*
Package sqlite stores transaction snapshots in SQLite.

PURPOSE:
  Holds the input side of the analytics: datasets of point-of-sale rows,
  seeded from a scenario or an import, and read back as a retail.Table.
  Analysis results are never written here.

KEY TABLES:
  datasets:     One row per imported snapshot (id, source, loaded_at)
  transactions: Sale rows, keyed by dataset

DECIMALS:
  Quantities and money are stored as TEXT and parsed back with
  shopspring/decimal so no precision is lost. NULL stays NULL.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around multi-statement writes.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer.

USAGE:
  store, err := sqlite.New("./data/retail.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  id, err := store.SaveDataset(ctx, "scenario:baseline", records)
  table, err := store.Load(ctx) // latest dataset

SEE ALSO:
  - retail/types.go: Record and Table
  - store/csvfile: CSV source producing the same Table
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// Store is a SQLite-backed snapshot source.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		loaded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		store_name TEXT,
		item_code TEXT,
		item_barcode TEXT,
		description TEXT,
		supplier TEXT,
		category TEXT,
		department TEXT,
		sub_department TEXT,
		section TEXT,
		date_of_sale TEXT,
		quantity TEXT,
		total_sales TEXT,
		rrp TEXT,
		unit_price TEXT,
		discount_pct TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_dataset
		ON transactions(dataset_id, id);
	CREATE INDEX IF NOT EXISTS idx_transactions_supplier
		ON transactions(dataset_id, supplier);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DATASETS
// =============================================================================

// Dataset describes one stored snapshot.
type Dataset struct {
	ID          uuid.UUID
	Source      string
	RecordCount int
	LoadedAt    time.Time
}

// SaveDataset stores records as a new dataset, atomically.
func (s *Store) SaveDataset(ctx context.Context, source string, records []retail.Record) (uuid.UUID, error) {
	if len(records) == 0 {
		return uuid.Nil, retail.ErrEmptyTable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	id := uuid.New()
	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO datasets (id, source, record_count, loaded_at) VALUES (?, ?, ?, ?)`,
		id.String(), source, len(records), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save dataset: %w", err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO transactions
		(dataset_id, store_name, item_code, item_barcode, description, supplier,
		 category, department, sub_department, section, date_of_sale,
		 quantity, total_sales, rrp, unit_price, discount_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			id.String(),
			r.StoreName, r.ItemCode, r.Barcode, r.Description, r.Supplier,
			r.Category, r.Department, r.SubDepartment, r.Section,
			formatDate(r.Date),
			nullDecimal(r.Quantity), nullDecimal(r.TotalSales), nullDecimal(r.RRP),
			nullDecimal(r.UnitPrice), nullDecimal(r.DiscountPct),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit dataset: %w", err)
	}
	return id, nil
}

// ListDatasets returns stored datasets, newest first.
func (s *Store) ListDatasets(ctx context.Context) ([]Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, record_count, loaded_at FROM datasets ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDataset(row interface{ Scan(...any) error }) (Dataset, error) {
	var (
		d        Dataset
		id       string
		loadedAt string
	)
	if err := row.Scan(&id, &d.Source, &d.RecordCount, &loadedAt); err != nil {
		return d, err
	}
	var err error
	if d.ID, err = uuid.Parse(id); err != nil {
		return d, fmt.Errorf("bad dataset id %q: %w", id, err)
	}
	d.LoadedAt, _ = time.Parse(time.RFC3339Nano, loadedAt)
	return d, nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load returns the most recent dataset as a table. With nothing stored it
// returns retail.ErrEmptyTable.
func (s *Store) Load(ctx context.Context) (*retail.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, record_count, loaded_at FROM datasets ORDER BY rowid DESC LIMIT 1`)
	d, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return nil, retail.ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return s.loadDataset(ctx, d)
}

// LoadDataset returns a specific dataset as a table.
func (s *Store) LoadDataset(ctx context.Context, id uuid.UUID) (*retail.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, record_count, loaded_at FROM datasets WHERE id = ?`, id.String())
	d, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return nil, &retail.NotFoundError{Kind: "dataset", Name: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return s.loadDataset(ctx, d)
}

func (s *Store) loadDataset(ctx context.Context, d Dataset) (*retail.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT store_name, item_code, item_barcode, description, supplier,
		       category, department, sub_department, section, date_of_sale,
		       quantity, total_sales, rrp, unit_price, discount_pct
		FROM transactions
		WHERE dataset_id = ?
		ORDER BY id ASC
	`, d.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]retail.Record, 0, d.RecordCount)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	table, err := retail.NewTable(d.Source, records)
	if err != nil {
		return nil, err
	}
	table.ID = d.ID
	table.LoadedAt = d.LoadedAt
	return table, nil
}

func scanRecord(rows *sql.Rows) (retail.Record, error) {
	var (
		r                                              retail.Record
		store, item, barcode, desc, supplier           sql.NullString
		category, department, subDepartment, section   sql.NullString
		date                                           sql.NullString
		quantity, totalSales, rrp, unitPrice, discount sql.NullString
	)
	err := rows.Scan(
		&store, &item, &barcode, &desc, &supplier,
		&category, &department, &subDepartment, &section, &date,
		&quantity, &totalSales, &rrp, &unitPrice, &discount,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan transaction: %w", err)
	}

	r.StoreName = store.String
	r.ItemCode = item.String
	r.Barcode = barcode.String
	r.Description = desc.String
	r.Supplier = supplier.String
	r.Category = category.String
	r.Department = department.String
	r.SubDepartment = subDepartment.String
	r.Section = section.String
	if date.Valid && date.String != "" {
		r.Date, _ = time.Parse(dateLayout, date.String)
	}
	r.Quantity = parseDecimal(quantity)
	r.TotalSales = parseDecimal(totalSales)
	r.RRP = parseDecimal(rrp)
	r.UnitPrice = parseDecimal(unitPrice)
	r.DiscountPct = parseDecimal(discount)
	return r, nil
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// Reset deletes all data (for demo purposes).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"transactions", "datasets"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

func formatDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func nullDecimal(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

// parseDecimal reads a TEXT column. Unparseable values load as NULL so the
// quality checks can see them as missing.
func parseDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid || s.String == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
