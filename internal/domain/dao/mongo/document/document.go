package document

import (
	"time"
)

// DocumentRecord represents a document in MongoDB.
// CreatedAtMicros carries the exact creation instant; CreatedAt is the
// millisecond BSON date kept for ad-hoc queries and TTL tooling.
type DocumentRecord struct {
	ID              string    `bson:"_id"`
	Title           string    `bson:"title"`
	Content         string    `bson:"content"`
	Status          string    `bson:"status"`
	AccessCode      *string   `bson:"access_code"`
	CreatedAt       time.Time `bson:"created_at"`
	CreatedAtMicros int64     `bson:"created_at_us"`
}

// CollectionName returns the MongoDB collection name for documents.
func (DocumentRecord) CollectionName() string {
	return "documents"
}

// HasAccessCode returns true if an access code has been issued.
func (d *DocumentRecord) HasAccessCode() bool {
	return d.AccessCode != nil
}
