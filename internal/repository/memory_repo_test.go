package repository

import (
	"context"
	"testing"

	"feedbackhub-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_CRUD(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	a := &models.Feedback{ProductID: "p1", CustomerName: "a", Rating: 5, ReviewText: "great"}
	b := &models.Feedback{ProductID: "p2", CustomerName: "b", Rating: 2, ReviewText: "meh"}
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)

	text := "better now"
	updated, err := r.UpdateByID(ctx, a.ID, models.FeedbackPatch{ReviewText: &text})
	require.NoError(t, err)
	assert.Equal(t, "better now", updated.ReviewText)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, *updated, list[1])

	require.NoError(t, r.DeleteByID(ctx, a.ID))
	assert.ErrorIs(t, r.DeleteByID(ctx, a.ID), ErrNotFound)
	_, err = r.UpdateByID(ctx, a.ID, models.FeedbackPatch{ReviewText: &text})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestMemoryRepo_ListReturnsCopies(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &models.Feedback{ProductID: "p", CustomerName: "c", Rating: 3, ReviewText: "ok"}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	list[0].Rating = 1

	again, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, again[0].Rating)
}
