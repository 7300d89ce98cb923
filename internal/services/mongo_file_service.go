package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/photomap/backend/internal/models"
)

type MongoFileService struct {
	col *mongo.Collection
}

type mongoGeoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"` // [lng, lat]
}

type mongoFileDoc struct {
	ID           string           `bson:"_id"`
	URL          string           `bson:"url"`
	ThumbnailURL string           `bson:"thumbnail_url"`
	ArchiveURL   string           `bson:"archive_url,omitempty"`
	CreatedAt    time.Time        `bson:"created_at"`
	Lat          float64          `bson:"lat"`
	Lng          float64          `bson:"lng"`
	User         models.FileOwner `bson:"user"`
	IsAllowed    bool             `bson:"is_allowed"`
	Location     mongoGeoPoint    `bson:"location"`
}

// NewMongoFileService binds the files collection and creates its indexes on a
// best-effort basis.
func NewMongoFileService(ctx context.Context, client *mongo.Client, dbName string) *MongoFileService {
	col := client.Database(dbName).Collection("files")

	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_allowed", Value: 1}}},
		{Keys: bson.D{{Key: "user.id", Value: 1}}},
		{Keys: bson.D{{Key: "lat", Value: 1}, {Key: "lng", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	})

	return &MongoFileService{col: col}
}

func fileToDoc(f *models.File) mongoFileDoc {
	return mongoFileDoc{
		ID:           f.ID,
		URL:          f.URL,
		ThumbnailURL: f.ThumbnailURL,
		ArchiveURL:   f.ArchiveURL,
		CreatedAt:    f.CreatedAt,
		Lat:          f.Lat,
		Lng:          f.Lng,
		User:         f.User,
		IsAllowed:    f.IsAllowed,
		Location:     mongoGeoPoint{Type: "Point", Coordinates: []float64{f.Lng, f.Lat}},
	}
}

func docToFile(d mongoFileDoc) *models.File {
	return &models.File{
		ID:           d.ID,
		URL:          d.URL,
		ThumbnailURL: d.ThumbnailURL,
		ArchiveURL:   d.ArchiveURL,
		CreatedAt:    d.CreatedAt,
		Lat:          d.Lat,
		Lng:          d.Lng,
		User:         d.User,
		IsAllowed:    d.IsAllowed,
	}
}

func (s *MongoFileService) GetFile(ctx context.Context, id string) (*models.File, error) {
	var d mongoFileDoc
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return docToFile(d), nil
}

// PutFile writes the whole record, replacing any previous version.
func (s *MongoFileService) PutFile(ctx context.Context, f *models.File) error {
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": f.ID}, fileToDoc(f), options.Replace().SetUpsert(true))
	return err
}

func (s *MongoFileService) SetAllowed(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_allowed": true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (s *MongoFileService) DeleteFile(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (s *MongoFileService) ListFiles(ctx context.Context, q models.ListFilesQuery) ([]*models.File, error) {
	filter := bson.M{}
	if q.Allowed != nil {
		filter["is_allowed"] = *q.Allowed
	}
	if b := q.Bounds; b != nil {
		filter["lat"] = bson.M{"$gte": b.MinLat, "$lte": b.MaxLat}
		filter["lng"] = bson.M{"$gte": b.MinLng, "$lte": b.MaxLng}
	}

	cur, err := s.col.Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).SetLimit(int64(clampLimit(q.Limit))),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := make([]*models.File, 0)
	for cur.Next(ctx) {
		var d mongoFileDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		results = append(results, docToFile(d))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
