package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbackhub-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var QueryTimeoutDuration = 5 * time.Second

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO feedback (id, product_id, customer_name, rating, review_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	id := uuid.New()
	createdAt := timestamptz(time.Now())
	if _, err := r.db.Exec(ctx, query, id, feedback.ProductID, feedback.CustomerName,
		feedback.Rating, feedback.ReviewText, createdAt); err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	feedback.ID = id.String()
	feedback.CreatedAt = createdAt
	return nil
}

// List retrieves all feedback ordered by created_at descending.
func (r *PostgresRepo) List(ctx context.Context) ([]models.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, product_id, customer_name, rating, review_text, created_at
		FROM feedback
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	feedback := []models.Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		feedback = append(feedback, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return feedback, nil
}

// UpdateByID patches rating and review_text in one statement; nil fields keep their value.
func (r *PostgresRepo) UpdateByID(ctx context.Context, id string, patch models.FeedbackPatch) (*models.Feedback, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE feedback
		SET rating = COALESCE($2, rating),
		    review_text = COALESCE($3, review_text)
		WHERE id = $1
		RETURNING id, product_id, customer_name, rating, review_text, created_at
	`
	f, err := scanFeedback(r.db.QueryRow(ctx, query, uid, patch.Rating, patch.ReviewText))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepo) DeleteByID(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM feedback WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFeedback(row pgx.Row) (*models.Feedback, error) {
	var (
		f  models.Feedback
		id uuid.UUID
	)
	if err := row.Scan(&id, &f.ProductID, &f.CustomerName, &f.Rating, &f.ReviewText, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan feedback row: %w", err)
	}
	f.ID = id.String()
	return &f, nil
}

// timestamptz drops what a TIMESTAMPTZ column cannot hold.
func timestamptz(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
