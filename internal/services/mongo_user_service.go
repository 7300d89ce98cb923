package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/photomap/backend/internal/models"
)

type MongoUserService struct {
	col *mongo.Collection
}

func NewMongoUserService(client *mongo.Client, dbName string) *MongoUserService {
	return &MongoUserService{col: client.Database(dbName).Collection("users")}
}

func (s *MongoUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PutUser inserts the user if absent. A concurrent insert of the same id wins
// silently; the profile fields are captured once and never refreshed.
func (s *MongoUserService) PutUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	_, err := s.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *MongoUserService) SetIgnoreFilesShared(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"ignore_files_shared": true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
