// Package store persists imported places in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/okato-places/pkg/okato"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups that match no place.
var ErrNotFound = errors.New("place not found")

// Options describe how to reach the database.
type Options struct {
	// URL is a postgres:// (optionally jdbc:postgresql://) URL or a SQLite
	// file path, optionally prefixed with sqlite://.
	URL          string
	Login        string
	Password     string
	MaxOpenConns int
}

// Store is the places table plus the import journal.
type Store struct {
	db      *sql.DB
	dialect Dialect
	insert  string
}

// Open connects to the database described by opts and ensures the schema
// exists.
func Open(ctx context.Context, opts Options) (*Store, error) {
	db, dialect, err := openDB(opts)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	s := &Store{db: db, dialect: dialect, insert: PlacesTable.InsertReturningID(dialect)}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openDB(opts Options) (*sql.DB, Dialect, error) {
	url := strings.TrimPrefix(opts.URL, "jdbc:")
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		cfg, err := pgx.ParseConfig(url)
		if err != nil {
			return nil, Postgres, fmt.Errorf("parse database url: %w", err)
		}
		if opts.Login != "" {
			cfg.User = opts.Login
		}
		if opts.Password != "" {
			cfg.Password = opts.Password
		}
		return stdlib.OpenDB(*cfg), Postgres, nil
	}

	path := strings.TrimPrefix(url, "sqlite://")
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open(SQLite.DriverName, path+sep+"_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, SQLite, fmt.Errorf("open sqlite: %w", err)
	}
	return db, SQLite, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := append(PlacesTable.DDL(s.dialect), runsDDL...)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect reports the backend in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// InsertPlace inserts p in its own implicit transaction and returns the
// generated id.
func (s *Store) InsertPlace(ctx context.Context, p *okato.Place) (int64, error) {
	country := p.CountryID
	if country == "" {
		country = okato.DefaultCountry
	}
	values := map[string]any{
		"title":                    p.Title,
		"title_with_pronunciation": p.TitleWithPronunciation,
		"country_id":               country,
		"parent_place_id":          nullInt(p.ParentPlaceID),
		"okato_code":               nullString(p.OkatoCode),
	}
	cols := PlacesTable.insertColumns()
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = values[c]
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, s.insert, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert place %q: %w", p.Title, err)
	}
	return id, nil
}

// Get returns the place with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*okato.Place, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
		PlacesTable.SelectColumns(), PlacesTable.Name, s.dialect.Param(1))
	p, err := scanPlace(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("place %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get place %d: %w", id, err)
	}
	return p, nil
}

// ByCode returns every place stored under the hierarchical key, oldest first.
// More than one match means the file was imported more than once.
func (s *Store) ByCode(ctx context.Context, code string) ([]okato.Place, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE okato_code = %s ORDER BY id",
		PlacesTable.SelectColumns(), PlacesTable.Name, s.dialect.Param(1))
	places, err := s.queryPlaces(ctx, q, code)
	if err != nil {
		return nil, fmt.Errorf("places by code %s: %w", code, err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("code %s: %w", code, ErrNotFound)
	}
	return places, nil
}

// Children returns the direct children of a place ordered by id.
func (s *Store) Children(ctx context.Context, parentID int64) ([]okato.Place, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE parent_place_id = %s ORDER BY id",
		PlacesTable.SelectColumns(), PlacesTable.Name, s.dialect.Param(1))
	places, err := s.queryPlaces(ctx, q, parentID)
	if err != nil {
		return nil, fmt.Errorf("children of %d: %w", parentID, err)
	}
	return places, nil
}

// Count returns the number of stored places.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+PlacesTable.Name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count places: %w", err)
	}
	return n, nil
}

func (s *Store) queryPlaces(ctx context.Context, q string, args ...any) ([]okato.Place, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []okato.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, *p)
	}
	return places, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPlace reads the columns in SelectColumns order.
func scanPlace(row scanner) (*okato.Place, error) {
	var (
		p      okato.Place
		parent sql.NullInt64
		code   sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Title, &p.TitleWithPronunciation, &p.CountryID, &parent, &code); err != nil {
		return nil, err
	}
	if parent.Valid {
		p.ParentPlaceID = &parent.Int64
	}
	if code.Valid {
		p.OkatoCode = &code.String
	}
	return &p, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
