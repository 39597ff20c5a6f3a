package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbackhub-backend/internal/database"
	"feedbackhub-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// feedbackDoc is the stored shape of a feedback record in the "feedback" collection.
type feedbackDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	ProductID    string        `bson:"product_id"`
	CustomerName string        `bson:"customer_name"`
	Rating       int           `bson:"rating"`
	ReviewText   string        `bson:"review_text"`
	CreatedAt    time.Time     `bson:"created_at"`
}

func (d *feedbackDoc) toModel() models.Feedback {
	return models.Feedback{
		ID:           d.ID.Hex(),
		ProductID:    d.ProductID,
		CustomerName: d.CustomerName,
		Rating:       d.Rating,
		ReviewText:   d.ReviewText,
		CreatedAt:    d.CreatedAt,
	}
}

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{
		collection: database.GetCollection("feedback"),
	}
}

// newFeedbackDoc stamps feedback with the creation time at the millisecond
// precision BSON dates keep, so the caller sees what List later returns.
func newFeedbackDoc(feedback *models.Feedback, now time.Time) feedbackDoc {
	feedback.CreatedAt = now.UTC().Truncate(time.Millisecond)
	return feedbackDoc{
		ProductID:    feedback.ProductID,
		CustomerName: feedback.CustomerName,
		Rating:       feedback.Rating,
		ReviewText:   feedback.ReviewText,
		CreatedAt:    feedback.CreatedAt,
	}
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	doc := newFeedbackDoc(feedback, time.Now())
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	feedback.ID = result.InsertedID.(bson.ObjectID).Hex()
	return nil
}

// List returns every record, most recent first.
func (r *FeedbackRepo) List(ctx context.Context) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	var docs []feedbackDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}

	feedback := make([]models.Feedback, 0, len(docs))
	for i := range docs {
		feedback = append(feedback, docs[i].toModel())
	}
	return feedback, nil
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id string) (*models.Feedback, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc feedbackDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	feedback := doc.toModel()
	return &feedback, nil
}

// UpdateByID applies the patch in a single findOneAndUpdate and returns the updated record.
func (r *FeedbackRepo) UpdateByID(ctx context.Context, id string, patch models.FeedbackPatch) (*models.Feedback, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.ReviewText != nil {
		set["review_text"] = *patch.ReviewText
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc feedbackDoc
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	feedback := doc.toModel()
	return &feedback, nil
}

func (r *FeedbackRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes for the feedback collection
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "product_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
