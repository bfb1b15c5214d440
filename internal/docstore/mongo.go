package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the production backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects with the stable server API v1 and pings the admin database.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	api := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(api))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

type mongoCollection struct{ coll *mongo.Collection }

func mongoFilter(f Filter) (bson.M, error) {
	out := bson.M{}
	for _, cond := range f {
		if cond.Field == IDField {
			id, ok := cond.Value.(string)
			if !ok || cond.Op != OpEq {
				return nil, ErrInvalidID
			}
			oid, err := ParseID(id)
			if err != nil {
				return nil, err
			}
			out[IDField] = oid
			continue
		}
		if err := checkField(cond.Field); err != nil {
			return nil, err
		}
		switch cond.Op {
		case OpEq:
			out[cond.Field] = cond.Value
		case OpGte:
			out[cond.Field] = bson.M{"$gte": cond.Value}
		case OpMatch:
			out[cond.Field] = primitive.Regex{Pattern: fmt.Sprint(cond.Value), Options: "i"}
		default:
			return nil, fmt.Errorf("docstore: unsupported op %d", cond.Op)
		}
	}
	return out, nil
}

func mongoUpdate(u Update) (bson.M, error) {
	if u.empty() {
		return nil, errors.New("docstore: empty update")
	}
	out := bson.M{}
	if len(u.Set) > 0 {
		set := bson.M{}
		for k, v := range u.Set {
			if k == IDField {
				return nil, ErrBadField
			}
			if err := checkField(k); err != nil {
				return nil, err
			}
			set[k] = v
		}
		out["$set"] = set
	}
	if len(u.Inc) > 0 {
		inc := bson.M{}
		for k, v := range u.Inc {
			if err := checkField(k); err != nil {
				return nil, err
			}
			inc[k] = v
		}
		out["$inc"] = inc
	}
	return out, nil
}

func (c *mongoCollection) Find(ctx context.Context, f Filter, opts FindOptions) ([]Document, error) {
	filter, err := mongoFilter(f)
	if err != nil {
		return nil, err
	}
	fo := options.Find()
	if opts.SortField != "" {
		if err := checkField(opts.SortField); err != nil {
			return nil, err
		}
		dir := 1
		if opts.SortDesc {
			dir = -1
		}
		fo.SetSort(bson.D{{Key: opts.SortField, Value: dir}})
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	cur, err := c.coll.Find(ctx, filter, fo)
	if err != nil {
		return nil, err
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, normalizeDoc(m))
	}
	return out, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, f Filter) (Document, error) {
	filter, err := mongoFilter(f)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := c.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return normalizeDoc(m), nil
}

func (c *mongoCollection) Insert(ctx context.Context, doc Document) (string, error) {
	if err := checkKeys(doc); err != nil {
		return "", err
	}
	body := bson.M{}
	for k, v := range doc {
		if k != IDField {
			body[k] = v
		}
	}
	oid := primitive.NewObjectID()
	body[IDField] = oid
	if _, err := c.coll.InsertOne(ctx, body); err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, f Filter, u Update) (UpdateResult, error) {
	filter, err := mongoFilter(f)
	if err != nil {
		return UpdateResult{}, err
	}
	update, err := mongoUpdate(u)
	if err != nil {
		return UpdateResult{}, err
	}
	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	filter, err := mongoFilter(f)
	if err != nil {
		return 0, err
	}
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func normalizeDoc(m bson.M) Document {
	out := make(Document, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// normalize maps BSON-specific values onto JSON-compatible Go values.
func normalize(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return FormatTime(x.Time())
	case primitive.Timestamp:
		return int64(x.T)
	case primitive.Decimal128:
		return x.String()
	case primitive.Regex:
		return x.Pattern
	case int32:
		return int64(x)
	case primitive.M:
		return map[string]any(normalizeDoc(bson.M(x)))
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case primitive.Binary:
		return x.Data
	default:
		return v
	}
}
