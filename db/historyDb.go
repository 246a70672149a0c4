package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"policypath/models"

	_ "github.com/lib/pq"
)

// HistoryRepository is the session store: the full ordered conversation log
// per owner, loaded and saved as one snapshot.
type HistoryRepository interface {
	GetHistory(ownerID string) ([]models.Message, error)
	SaveHistory(ownerID string, messages []models.Message) error
	Close() error
}

type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(databaseURL string) (*PostgresHistoryRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresHistoryRepository{db: db}, nil
}

func (r *PostgresHistoryRepository) GetHistory(ownerID string) ([]models.Message, error) {
	query := `
		SELECT messages
		FROM policypath.conversations
		WHERE owner_id = $1`

	var raw []byte
	row := r.db.QueryRow(query, ownerID)

	err := row.Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return []models.Message{}, nil
		}
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	var messages []models.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode conversation history: %w", err)
	}

	return messages, nil
}

func (r *PostgresHistoryRepository) SaveHistory(ownerID string, messages []models.Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode conversation history: %w", err)
	}

	query := `
		INSERT INTO policypath.conversations (owner_id, messages)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET messages = $2, updated_at = NOW()`

	if _, err := r.db.Exec(query, ownerID, raw); err != nil {
		return fmt.Errorf("failed to save conversation history: %w", err)
	}

	return nil
}

func (r *PostgresHistoryRepository) Close() error {
	return r.db.Close()
}
