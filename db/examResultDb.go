package db

import (
	"database/sql"
	"fmt"

	"policypath/models"

	_ "github.com/lib/pq"
)

type ExamResultRepository interface {
	CreateExamResult(result *models.ExamResult) error
	GetExamResultsByOwner(ownerID string) ([]*models.ExamResult, error)
	Close() error
}

type PostgresExamResultRepository struct {
	db *sql.DB
}

func NewPostgresExamResultRepository(databaseURL string) (*PostgresExamResultRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresExamResultRepository{db: db}, nil
}

func (r *PostgresExamResultRepository) CreateExamResult(result *models.ExamResult) error {
	query := `
		INSERT INTO policypath.exam_results (owner_id, score, total_questions, topics_covered)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	row := r.db.QueryRow(query, result.OwnerID, result.Score, result.TotalQuestions, result.TopicsCovered)

	err := row.Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create exam result: %w", err)
	}

	return nil
}

func (r *PostgresExamResultRepository) GetExamResultsByOwner(ownerID string) ([]*models.ExamResult, error) {
	query := `
		SELECT id, owner_id, score, total_questions, topics_covered, created_at
		FROM policypath.exam_results
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exam results: %w", err)
	}
	defer rows.Close()

	var results []*models.ExamResult
	for rows.Next() {
		result := &models.ExamResult{}
		err := rows.Scan(&result.ID, &result.OwnerID, &result.Score, &result.TotalQuestions, &result.TopicsCovered, &result.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over exam results: %w", err)
	}

	return results, nil
}

func (r *PostgresExamResultRepository) Close() error {
	return r.db.Close()
}
