package mongodb

import (
	"OpenFront/internal/world/entity"
	"OpenFront/internal/world/infra/persistence/model"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultCollectionName = "game_snapshot"

type GameRepository struct {
	coll *mongo.Collection
}

func NewGameRepository(db *mongo.Database) *GameRepository {
	return &GameRepository{
		coll: db.Collection(defaultCollectionName),
	}
}

func (r *GameRepository) Load(ctx context.Context, id entity.GameID) (*entity.GamePersistSnapshot, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb game collection is nil")
	}

	var doc model.GameSnapshotDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err == nil {
		return doc.ToEntity(), nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return nil, err
}

func (r *GameRepository) Save(ctx context.Context, s *entity.GamePersistSnapshot) error {
	if s == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errors.New("mongodb game collection is nil")
	}

	doc := model.ToDoc(s)
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.GameID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}
