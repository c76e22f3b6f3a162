package opentargets

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store reads Open Targets parquet snapshots through DuckDB. The snapshots
// are directories of part files; DuckDB handles the globbing and columnar
// decoding, and rows are scanned out through database/sql.
type Store struct {
	db *sql.DB
}

// OpenStore opens a DuckDB connection. Use an empty path for an in-memory
// database; no on-disk state is needed for plain snapshot reads.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ReadDiseases loads the disease index from a parquet glob
// (e.g. "data/opentargets/disease/*.parquet").
//
// The list-valued columns are surfaced as JSON text so that a null list
// arrives as SQL NULL and maps to a nil slice, keeping "absent" distinct
// from an empty list.
func (s *Store) ReadDiseases(glob string) ([]Disease, error) {
	query := fmt.Sprintf(`SELECT id, name,
			CAST(to_json(ancestors) AS VARCHAR),
			CAST(to_json("dbXRefs") AS VARCHAR)
		FROM read_parquet('%s')`, sqlEscape(glob))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("read disease index %s: %w", glob, err)
	}
	defer rows.Close()

	var diseases []Disease
	for rows.Next() {
		var d Disease
		var ancestors, xrefs sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &ancestors, &xrefs); err != nil {
			return nil, fmt.Errorf("scan disease row: %w", err)
		}
		if d.Ancestors, err = decodeStringList(ancestors); err != nil {
			return nil, fmt.Errorf("decode ancestors for %s: %w", d.ID, err)
		}
		if d.DBXRefs, err = decodeStringList(xrefs); err != nil {
			return nil, fmt.Errorf("decode dbXRefs for %s: %w", d.ID, err)
		}
		diseases = append(diseases, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("disease rows: %w", err)
	}
	return diseases, nil
}

// StreamAssociations reads the association table from a parquet glob and
// invokes fn once per row. The table is large; rows stream through the
// cursor instead of materializing in memory. Row order carries no meaning,
// every downstream join is a plain equality join.
func (s *Store) StreamAssociations(glob string, fn func(Association) error) error {
	query := fmt.Sprintf(`SELECT "diseaseId", "targetId", score, "evidenceCount"
		FROM read_parquet('%s')`, sqlEscape(glob))

	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("read associations %s: %w", glob, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a Association
		if err := rows.Scan(&a.DiseaseID, &a.TargetID, &a.Score, &a.EvidenceCount); err != nil {
			return fmt.Errorf("scan association row: %w", err)
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("association rows: %w", err)
	}
	return nil
}

// decodeStringList unmarshals a JSON array column value. SQL NULL maps to a
// nil slice.
func decodeStringList(v sql.NullString) ([]string, error) {
	if !v.Valid {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(v.String), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// sqlEscape escapes single quotes for embedding a path in a SQL literal.
// Paths come from config, not user data rows, but a quote in a directory
// name must not break the query.
func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
