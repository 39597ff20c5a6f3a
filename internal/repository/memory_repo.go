package repository

import (
	"context"
	"sync"
	"time"

	"feedbackhub-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryRepo is an in-process feedback store. Records are kept in insertion
// order and listed most recent first.
type MemoryRepo struct {
	sync.RWMutex
	order []string
	data  map[string]models.Feedback
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]models.Feedback),
		now:  time.Now,
	}
}

func (r *MemoryRepo) Create(_ context.Context, feedback *models.Feedback) error {
	r.Lock()
	defer r.Unlock()

	feedback.ID = uuid.New().String()
	feedback.CreatedAt = r.now().UTC()
	r.data[feedback.ID] = *feedback
	r.order = append(r.order, feedback.ID)
	return nil
}

func (r *MemoryRepo) List(_ context.Context) ([]models.Feedback, error) {
	r.RLock()
	defer r.RUnlock()

	feedback := make([]models.Feedback, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		feedback = append(feedback, r.data[r.order[i]])
	}
	return feedback, nil
}

func (r *MemoryRepo) UpdateByID(_ context.Context, id string, patch models.FeedbackPatch) (*models.Feedback, error) {
	r.Lock()
	defer r.Unlock()

	f, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&f)
	r.data[id] = f
	return &f, nil
}

func (r *MemoryRepo) DeleteByID(_ context.Context, id string) error {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
