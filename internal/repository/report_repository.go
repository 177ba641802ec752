package repository

import (
	"context"

	"assessment-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReportRepository struct {
	Col *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{Col: db.Collection("assessment_reports")}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.AssessmentReport) error {
	res, err := r.Col.InsertOne(ctx, report)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid.Hex()
	}
	return nil
}

func (r *ReportRepository) FindBySession(ctx context.Context, sessionID string) (*models.AssessmentReport, error) {
	var report models.AssessmentReport
	err := r.Col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) FindByUser(ctx context.Context, userID string) ([]models.AssessmentReport, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var reports []models.AssessmentReport
	for cur.Next(ctx) {
		var rep models.AssessmentReport
		if err := cur.Decode(&rep); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
