package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spendtrack/expense-forecast/internal/models"
)

// ErrUserNotFound is returned when an email resolves to no user.
var ErrUserNotFound = errors.New("user not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetUserIDByEmail resolves a user's id from their email.
func (r *Repository) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	query := `SELECT id FROM users WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find user: %w", err)
	}
	return id, nil
}

// FetchObservations returns every dated expense amount for the user,
// unsorted.
func (r *Repository) FetchObservations(ctx context.Context, userID int64) ([]models.Observation, error) {
	query := `SELECT date, amount FROM expenses WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Date, &o.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expense rows: %w", err)
	}
	return observations, nil
}

// FetchYearToDate returns the sum of the user's expenses within the given
// calendar year.
func (r *Repository) FetchYearToDate(ctx context.Context, userID int64, year int) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1 AND EXTRACT(YEAR FROM date) = $2`
	if err := r.db.QueryRowContext(ctx, query, userID, year).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum year-to-date expenses: %w", err)
	}
	return total, nil
}

// ListUserActivity returns every user with expenses together with the date
// of their most recent one.
func (r *Repository) ListUserActivity(ctx context.Context) ([]models.UserActivity, error) {
	query := `
		SELECT u.id, u.email, MAX(e.date)
		FROM users u
		JOIN expenses e ON e.user_id = u.id
		GROUP BY u.id, u.email`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity: %w", err)
	}
	defer rows.Close()

	var activity []models.UserActivity
	for rows.Next() {
		var a models.UserActivity
		if err := rows.Scan(&a.UserID, &a.Email, &a.LastExpense); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity rows: %w", err)
	}
	return activity, nil
}
