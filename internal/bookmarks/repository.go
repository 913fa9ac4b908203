package bookmarks

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Bookmark pins a document against reclamation for one account.
type Bookmark struct {
	AccountName string `bson:"accountName" json:"accountName"`
	DocumentID  string `bson:"documentId" json:"documentId"`
}

// Repository provides the durable (accountName, documentId) relation. The
// pair is unique; Upsert of an existing pair is a no-op.
type Repository interface {
	Upsert(ctx context.Context, accountName, documentID string) error
	Delete(ctx context.Context, accountName, documentID string) error
	ListByAccount(ctx context.Context, accountName string) ([]string, error)
	AccountsForDocument(ctx context.Context, documentID string) ([]string, error)
	CountForDocument(ctx context.Context, documentID string) (int64, error)
}

// MongoRepository implements Repository with a unique compound index on the
// (accountName, documentId) pair.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "accountName", Value: 1}, {Key: "documentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Upsert(ctx context.Context, accountName, documentID string) error {
	filter := bson.M{"accountName": accountName, "documentId": documentID}
	update := bson.M{"$setOnInsert": filter}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepository) Delete(ctx context.Context, accountName, documentID string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"accountName": accountName, "documentId": documentID})
	return err
}

func (r *MongoRepository) ListByAccount(ctx context.Context, accountName string) ([]string, error) {
	cur, err := r.col.Find(ctx, bson.M{"accountName": accountName})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var b Bookmark
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, b.DocumentID)
	}
	return out, cur.Err()
}

func (r *MongoRepository) AccountsForDocument(ctx context.Context, documentID string) ([]string, error) {
	cur, err := r.col.Find(ctx, bson.M{"documentId": documentID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var b Bookmark
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		out = append(out, b.AccountName)
	}
	return out, cur.Err()
}

func (r *MongoRepository) CountForDocument(ctx context.Context, documentID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"documentId": documentID})
}
