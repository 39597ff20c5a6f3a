package service

import (
	"context"
	"errors"
	"math"
	"time"

	"feedbackhub-backend/internal/models"
	"feedbackhub-backend/internal/notify"
	"feedbackhub-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

//go:generate mockgen -source=feedback.go -destination=mocks/store.go -package=mocks

// FeedbackStore is the persistence collaborator. Implementations assign ID and
// CreatedAt on Create and return repository.ErrNotFound for unknown IDs.
type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	List(ctx context.Context) ([]models.Feedback, error)
	UpdateByID(ctx context.Context, id string, patch models.FeedbackPatch) (*models.Feedback, error)
	DeleteByID(ctx context.Context, id string) error
}

type Authenticator interface {
	Validate(token string) (models.AdminIdentity, error)
}

const notifyTimeout = 10 * time.Second

type FeedbackService struct {
	store    FeedbackStore
	auth     Authenticator
	notifier notify.Notifier
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewFeedbackService(store FeedbackStore, auth Authenticator, notifier notify.Notifier, logger *zap.SugaredLogger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		auth:     auth,
		notifier: notifier,
		validate: newValidator(),
		logger:   logger,
	}
}

// Submit validates a customer draft and persists it. No credential is needed.
func (s *FeedbackService) Submit(ctx context.Context, draft models.FeedbackDraft) (*models.Feedback, error) {
	if err := s.validate.Struct(draft); err != nil {
		return nil, toValidationError(err)
	}

	feedback := &models.Feedback{
		ProductID:    draft.ProductID,
		CustomerName: draft.CustomerName,
		Rating:       draft.Rating,
		ReviewText:   draft.ReviewText,
	}
	if err := s.store.Create(ctx, feedback); err != nil {
		return nil, err
	}
	s.logger.Infow("feedback submitted", "id", feedback.ID, "product_id", feedback.ProductID, "rating", feedback.Rating)

	if s.notifier != nil {
		message := notify.FormatFeedbackMessage(feedback)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.notifier.Publish(ctx, message); err != nil {
				s.logger.Warnw("failed to publish feedback notification", "error", err)
			}
		}()
	}

	return feedback, nil
}

// List returns every record together with freshly computed stats.
func (s *FeedbackService) List(ctx context.Context, token string) (*models.FeedbackList, error) {
	if _, err := s.auth.Validate(token); err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Feedback{}
	}
	return &models.FeedbackList{
		Feedback: records,
		Stats:    ComputeStats(records),
	}, nil
}

// Update changes rating and/or review text. Other fields are never touched.
func (s *FeedbackService) Update(ctx context.Context, token, id string, patch models.FeedbackPatch) (*models.Feedback, error) {
	admin, err := s.auth.Validate(token)
	if err != nil {
		return nil, err
	}
	if err := s.validatePatch(patch); err != nil {
		return nil, err
	}

	feedback, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.logger.Infow("feedback updated", "id", id, "admin", admin.Username)
	return feedback, nil
}

// Remove permanently deletes a record. Deleting an already deleted ID reports ErrNotFound.
func (s *FeedbackService) Remove(ctx context.Context, token, id string) error {
	admin, err := s.auth.Validate(token)
	if err != nil {
		return err
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Infow("feedback deleted", "id", id, "admin", admin.Username)
	return nil
}

func (s *FeedbackService) validatePatch(patch models.FeedbackPatch) error {
	if patch.IsEmpty() {
		return newValidationError("body", "no fields provided for update")
	}

	fields := map[string]string{}
	if patch.Rating != nil {
		if err := s.validate.Var(*patch.Rating, "min=1,max=5"); err != nil {
			fields["rating"] = ratingMessage
		}
	}
	if patch.ReviewText != nil {
		if err := s.validate.Var(*patch.ReviewText, "required"); err != nil {
			fields["review_text"] = "is required"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ComputeStats derives the total and the mean rating rounded to one decimal.
func ComputeStats(records []models.Feedback) models.Stats {
	if len(records) == 0 {
		return models.Stats{}
	}

	sum := 0
	for _, r := range records {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(records))
	return models.Stats{
		Total:         len(records),
		AverageRating: math.Round(avg*10) / 10,
	}
}
