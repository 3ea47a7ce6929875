package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/dao/mongo/document"
	"github.com/julienreichel/oc-provider-backend/internal/domain/dao/mongo/mapper"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
)

// documentDAO implements dao.DocumentDAO using MongoDB.
type documentDAO struct {
	*baseMongoDAO[document.DocumentRecord]
	mapper *mapper.DocumentMapper
}

// NewDocumentDAO creates a new MongoDB-based DocumentDAO.
func NewDocumentDAO(db *mongo.Database) dao.DocumentDAO {
	return &documentDAO{
		baseMongoDAO: newBaseMongoDAO[document.DocumentRecord](db, document.DocumentRecord{}.CollectionName()),
		mapper:       mapper.NewDocumentMapper(),
	}
}

// DocumentIndexes are the indexes the documents collection needs for
// keyset pagination.
func DocumentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at_us", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_documents_created_at_id"),
		},
	}
}

func (d *documentDAO) Save(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	rec := d.mapper.ToDocument(doc)
	if err := d.replaceOne(ctx, rec.ID, rec); err != nil {
		return nil, fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return d.mapper.ToEntity(rec), nil
}

func (d *documentDAO) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	rec, err := d.findOneByFilter(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return d.mapper.ToEntity(rec), nil
}

func (d *documentDAO) FindAll(ctx context.Context) ([]*entity.Document, error) {
	recs, err := d.findManyByFilter(ctx, bson.M{}, options.Find().SetSort(descendingSort()))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return d.mapper.ToEntities(recs), nil
}

func (d *documentDAO) FindAfter(ctx context.Context, after *cursor.Position, limit int) ([]*entity.Document, error) {
	if limit <= 0 {
		return []*entity.Document{}, nil
	}

	opts := options.Find().
		SetSort(descendingSort()).
		SetLimit(int64(limit))

	recs, err := d.findManyByFilter(ctx, afterFilter(after), opts)
	if err != nil {
		return nil, fmt.Errorf("paginate documents: %w", err)
	}
	return d.mapper.ToEntities(recs), nil
}

func (d *documentDAO) Delete(ctx context.Context, id string) error {
	return d.deleteOne(ctx, bson.M{"_id": id})
}

func (d *documentDAO) DeleteAll(ctx context.Context) error {
	return d.deleteMany(ctx, bson.M{})
}

func (d *documentDAO) Count(ctx context.Context) (int64, error) {
	return d.count(ctx, bson.M{})
}

// afterFilter selects records strictly after pos in (created_at_us desc,
// _id desc) order. A nil position matches everything.
func afterFilter(pos *cursor.Position) bson.M {
	if pos == nil {
		return bson.M{}
	}
	micros := pos.CreatedAt.UnixMicro()
	return bson.M{
		"$or": bson.A{
			bson.M{"created_at_us": bson.M{"$lt": micros}},
			bson.M{"created_at_us": micros, "_id": bson.M{"$lt": pos.ID}},
		},
	}
}

func descendingSort() bson.D {
	return bson.D{{Key: "created_at_us", Value: -1}, {Key: "_id", Value: -1}}
}
