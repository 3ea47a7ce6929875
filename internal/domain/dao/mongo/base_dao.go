// Package mongo provides MongoDB-based DAO implementations.
package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// baseMongoDAO provides common MongoDB operations for all entity DAOs.
// D is the BSON record type stored in the collection.
type baseMongoDAO[D any] struct {
	collection *mongo.Collection
}

// newBaseMongoDAO creates a new base MongoDB DAO instance.
func newBaseMongoDAO[D any](db *mongo.Database, collectionName string) *baseMongoDAO[D] {
	return &baseMongoDAO[D]{
		collection: db.Collection(collectionName),
	}
}

// getCollection returns the MongoDB collection.
func (d *baseMongoDAO[D]) getCollection() *mongo.Collection {
	return d.collection
}

// count returns the count of documents matching the filter.
func (d *baseMongoDAO[D]) count(ctx context.Context, filter bson.M) (int64, error) {
	return d.collection.CountDocuments(ctx, filter)
}

// findOneByFilter finds a single record matching the filter.
// Returns nil, nil when nothing matches.
func (d *baseMongoDAO[D]) findOneByFilter(ctx context.Context, filter bson.M) (*D, error) {
	var rec D
	err := d.collection.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// findManyByFilter finds all records matching the filter.
func (d *baseMongoDAO[D]) findManyByFilter(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]D, error) {
	cursor, err := d.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []D
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// replaceOne upserts a record by _id.
func (d *baseMongoDAO[D]) replaceOne(ctx context.Context, id any, rec *D) error {
	_, err := d.collection.ReplaceOne(ctx, bson.M{"_id": id}, rec, options.Replace().SetUpsert(true))
	return err
}

// deleteOne deletes the record matching the filter.
func (d *baseMongoDAO[D]) deleteOne(ctx context.Context, filter bson.M) error {
	_, err := d.collection.DeleteOne(ctx, filter)
	return err
}

// deleteMany deletes all records matching the filter.
func (d *baseMongoDAO[D]) deleteMany(ctx context.Context, filter bson.M) error {
	_, err := d.collection.DeleteMany(ctx, filter)
	return err
}
