package repository

import (
	"context"
	"time"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("assessment_sessions")}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.AssessmentSession) error {
	res, err := r.Col.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AssessmentSession, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var session models.AssessmentSession
	err = r.Col.FindOne(ctx, bson.M{"_id": objID}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now()
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	return err
}

// UpdateStatus advances the status only when the current value is one of
// `from`, so racing writers can never downgrade a session. A non-matching
// current status is a no-op, not an error.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id, status string, from ...string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Col.UpdateOne(ctx,
		bson.M{"_id": objID, "status": bson.M{"$in": from}},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	return err
}

// PushQuestions appends a section's items and applies the status fields in a
// single document update, so a section-completion transition is atomic at
// store granularity.
func (r *SessionRepository) PushQuestions(ctx context.Context, id string, items []models.Question, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now()
	_, err = r.Col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$push": bson.M{"questions": bson.M{"$each": items}},
		"$set":  fields,
	})
	return err
}
