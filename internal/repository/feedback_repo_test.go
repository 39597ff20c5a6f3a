package repository

import (
	"testing"
	"time"

	"feedbackhub-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNewFeedbackDoc_CreatedAtSurvivesStorage(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 14, 701035018, time.FixedZone("X", 3600))
	feedback := &models.Feedback{ProductID: "p1", CustomerName: "Ann", Rating: 4, ReviewText: "good"}

	doc := newFeedbackDoc(feedback, now)
	doc.ID = bson.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var back feedbackDoc
	require.NoError(t, bson.Unmarshal(raw, &back))

	stored := back.toModel()
	assert.True(t, feedback.CreatedAt.Equal(stored.CreatedAt), "created %v, stored %v", feedback.CreatedAt, stored.CreatedAt)
	assert.Equal(t, time.UTC, feedback.CreatedAt.Location())
	assert.Equal(t, "p1", stored.ProductID)
	assert.Equal(t, 4, stored.Rating)
}

func TestTimestamptz(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 14, 701035018, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 26, 14, 701035000, time.UTC), timestamptz(now))
}
