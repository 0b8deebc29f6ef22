package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"invisinsights/internal/model"
)

const projectConnectionsCollection = "project_connections"

type mongoProjectRepo struct {
	collection *mongo.Collection
}

// NewMongoProjectRepo creates a MongoDB-backed project repository with indexes
func NewMongoProjectRepo(ctx context.Context, db *mongo.Database, logger *zap.Logger) ProjectRepo {
	repo := &mongoProjectRepo{
		collection: db.Collection(projectConnectionsCollection),
	}

	opts := options.Index().SetUnique(true)
	_, err := repo.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "project_id", Value: 1}},
		Options: opts,
	})
	if err != nil {
		logger.Warn("failed to create index",
			zap.String("collection", projectConnectionsCollection),
			zap.Error(err))
	}

	return repo
}

func (r *mongoProjectRepo) Save(ctx context.Context, conn *model.ProjectConnection) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"project_id": conn.ProjectID},
		conn,
		opts,
	)
	return err
}

func (r *mongoProjectRepo) Get(ctx context.Context, projectID string) (*model.ProjectConnection, error) {
	var conn model.ProjectConnection
	err := r.collection.FindOne(ctx, bson.M{"project_id": projectID}).Decode(&conn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}
