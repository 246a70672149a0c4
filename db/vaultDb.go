package db

import (
	"database/sql"
	"fmt"

	"policypath/models"

	"github.com/lib/pq"
)

type VaultRepository interface {
	CreateEntry(entry *models.VaultEntry) error
	GetEntriesByOwner(ownerID string) ([]*models.VaultEntry, error)
	Close() error
}

type PostgresVaultRepository struct {
	db *sql.DB
}

func NewPostgresVaultRepository(databaseURL string) (*PostgresVaultRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresVaultRepository{db: db}, nil
}

// ErrDuplicateEntry is returned when the unique index on
// (owner_id, lower(title)) rejects an insert. The service-level snapshot
// scan catches most duplicates first; the index is the authority under
// concurrent writers.
var ErrDuplicateEntry = fmt.Errorf("vault entry already exists")

func (r *PostgresVaultRepository) CreateEntry(entry *models.VaultEntry) error {
	query := `
		INSERT INTO policypath.vault (owner_id, title, status, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	row := r.db.QueryRow(query, entry.OwnerID, entry.Title, entry.Status, entry.Notes)

	err := row.Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create vault entry: %w", err)
	}

	return nil
}

func (r *PostgresVaultRepository) GetEntriesByOwner(ownerID string) ([]*models.VaultEntry, error) {
	query := `
		SELECT id, owner_id, title, status, notes, created_at
		FROM policypath.vault
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vault entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.VaultEntry
	for rows.Next() {
		entry := &models.VaultEntry{}
		err := rows.Scan(&entry.ID, &entry.OwnerID, &entry.Title, &entry.Status, &entry.Notes, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vault entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over vault entries: %w", err)
	}

	return entries, nil
}

func (r *PostgresVaultRepository) Close() error {
	return r.db.Close()
}
