package records

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/seatmap/pkg/errors"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string // default "seatmap"
	Collection string // default "section_records"
	Timeout    time.Duration
}

// MongoStore reads records from a collection whose documents use the section
// id as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoRecord struct {
	ID            string `bson:"_id"`
	SectionRecord `bson:",inline"`
}

// NewMongoStore connects and pings the server.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = "seatmap"
	}
	if opts.Collection == "" {
		opts.Collection = "section_records"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "connect mongodb")
	}
	pctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (Lookup, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "find records")
	}
	defer cur.Close(ctx)

	out := Lookup{}
	for cur.Next(ctx) {
		var doc mongoRecord
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "decode record")
		}
		out[doc.ID] = doc.SectionRecord
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "find records")
	}
	return out, nil
}

// Put upserts every record with a single bulk write.
func (s *MongoStore) Put(ctx context.Context, recs Lookup) error {
	if len(recs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(recs))
	for _, id := range recs.IDs() {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: id}}).
			SetReplacement(mongoRecord{ID: id, SectionRecord: recs[id]}).
			SetUpsert(true))
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
