package db

import (
	"database/sql"
	"fmt"

	"policypath/models"

	_ "github.com/lib/pq"
)

type ProfileRepository interface {
	GetProfile(ownerID string) (*models.UserProfile, error)
	UpdateProfile(profile *models.UserProfile) error
	Close() error
}

type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(databaseURL string) (*PostgresProfileRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresProfileRepository{db: db}, nil
}

func (r *PostgresProfileRepository) GetProfile(ownerID string) (*models.UserProfile, error) {
	query := `
		SELECT owner_id, display_name, xp, streak, last_active_date, topics_mastered, created_at, updated_at
		FROM policypath.profiles
		WHERE owner_id = $1`

	profile := &models.UserProfile{}
	row := r.db.QueryRow(query, ownerID)

	err := row.Scan(&profile.OwnerID, &profile.DisplayName, &profile.XP, &profile.Streak,
		&profile.LastActiveDate, &profile.TopicsMastered, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return r.createProfile(ownerID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

func (r *PostgresProfileRepository) createProfile(ownerID string) (*models.UserProfile, error) {
	query := `
		INSERT INTO policypath.profiles (owner_id, display_name, xp, streak, last_active_date, topics_mastered)
		VALUES ($1, '', 0, 0, 'epoch', 0)
		RETURNING owner_id, display_name, xp, streak, last_active_date, topics_mastered, created_at, updated_at`

	profile := &models.UserProfile{}
	row := r.db.QueryRow(query, ownerID)

	err := row.Scan(&profile.OwnerID, &profile.DisplayName, &profile.XP, &profile.Streak,
		&profile.LastActiveDate, &profile.TopicsMastered, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// UpdateProfile writes the full replacement row in a single statement so
// concurrent progression events serialize at the store.
func (r *PostgresProfileRepository) UpdateProfile(profile *models.UserProfile) error {
	query := `
		UPDATE policypath.profiles
		SET display_name = $1, xp = $2, streak = $3, last_active_date = $4, topics_mastered = $5, updated_at = NOW()
		WHERE owner_id = $6`

	result, err := r.db.Exec(query, profile.DisplayName, profile.XP, profile.Streak,
		profile.LastActiveDate, profile.TopicsMastered, profile.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("profile for owner %s not found", profile.OwnerID)
	}

	return nil
}

func (r *PostgresProfileRepository) Close() error {
	return r.db.Close()
}
