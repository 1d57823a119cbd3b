package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/errors"
)

const (
	nodesCollection     = "nodes"
	positionsCollection = "positions"
)

// MongoStore is a MongoDB-backed Store for hosted deployments.
//
// Nodes live in the "nodes" collection keyed by node id, wrapped in a
// record document carrying the soft-delete flag and timestamps. Positions
// live in "positions" keyed by node id.
type MongoStore struct {
	client    *mongo.Client
	nodes     *mongo.Collection
	positions *mongo.Collection
}

// mongoRecord is the nodes collection document shape.
type mongoRecord struct {
	ID string `bson:"_id"`
	record `bson:",inline"`
}

// mongoPosition is the positions collection document shape.
type mongoPosition struct {
	ID string  `bson:"_id"`
	X  float64 `bson:"x"`
	Y  float64 `bson:"y"`
}

// NewMongoStore connects to MongoDB and returns a store over the given
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:    client,
		nodes:     db.Collection(nodesCollection),
		positions: db.Collection(positionsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.nodes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "node.parent_id", Value: 1}, {Key: "deleted", Value: 1}}},
		{Keys: bson.D{{Key: "deleted", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// live matches non-deleted records.
func live() bson.M {
	return bson.M{"deleted": false}
}

func (s *MongoStore) Load(ctx context.Context) (cv.Data, error) {
	var data cv.Data

	// created_at ordering keeps sibling order stable across loads.
	cur, err := s.nodes.Find(ctx, live(), options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return data, fmt.Errorf("load nodes: %w", err)
	}
	var records []mongoRecord
	if err := cur.All(ctx, &records); err != nil {
		return data, fmt.Errorf("decode nodes: %w", err)
	}
	for _, rec := range records {
		data.Nodes = append(data.Nodes, rec.Node)
	}

	posCur, err := s.positions.Find(ctx, bson.M{})
	if err != nil {
		return data, fmt.Errorf("load positions: %w", err)
	}
	var positions []mongoPosition
	if err := posCur.All(ctx, &positions); err != nil {
		return data, fmt.Errorf("decode positions: %w", err)
	}
	for _, pos := range positions {
		data.Positions = append(data.Positions, cv.Position{NodeID: pos.ID, X: pos.X, Y: pos.Y})
	}

	return data, nil
}

func (s *MongoStore) GetNode(ctx context.Context, id string) (cv.Node, error) {
	filter := live()
	filter["_id"] = id

	var rec mongoRecord
	err := s.nodes.FindOne(ctx, filter).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return cv.Node{}, notFound(id)
	}
	if err != nil {
		return cv.Node{}, fmt.Errorf("get node: %w", err)
	}
	return rec.Node, nil
}

func (s *MongoStore) Children(ctx context.Context, parentID string) ([]cv.Node, error) {
	filter := live()
	filter["node.parent_id"] = parentID

	cur, err := s.nodes.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	var records []mongoRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}

	var children []cv.Node
	for _, rec := range records {
		children = append(children, rec.Node)
	}
	return children, nil
}

func (s *MongoStore) Search(ctx context.Context, query string) ([]cv.Node, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := live()
	filter["$or"] = bson.A{
		bson.M{"node.label": pattern},
		bson.M{"node.description": pattern},
		bson.M{"node.company": pattern},
		bson.M{"node.tags": pattern},
		bson.M{"node.technologies": pattern},
	}

	cur, err := s.nodes.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("search nodes: %w", err)
	}
	var records []mongoRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	var matches []cv.Node
	for _, rec := range records {
		matches = append(matches, rec.Node)
	}
	return matches, nil
}

func (s *MongoStore) CreateNode(ctx context.Context, node cv.Node) (cv.Node, error) {
	node.ID = mintID(node)
	if !node.Type.Valid() {
		return cv.Node{}, errors.New(errors.ErrCodeInvalidNode, "unknown node type: %q", node.Type)
	}

	if node.ParentID != "" {
		if _, err := s.GetNode(ctx, node.ParentID); err != nil {
			return cv.Node{}, err
		}
	}

	now := time.Now()
	doc := mongoRecord{
		ID: node.ID,
		record: record{
			Node:      node,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	_, err := s.nodes.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return cv.Node{}, errors.New(errors.ErrCodeDuplicate, "node %q already exists", node.ID)
	}
	if err != nil {
		return cv.Node{}, fmt.Errorf("insert node: %w", err)
	}
	return node, nil
}

func (s *MongoStore) UpdateNode(ctx context.Context, node cv.Node) (cv.Node, error) {
	// Read-merge-write keeps the merge semantics identical to the memory
	// store. Concurrent edits to the same node are last-writer-wins, which
	// is acceptable for a single-owner document.
	stored, err := s.GetNode(ctx, node.ID)
	if err != nil {
		return cv.Node{}, err
	}

	mergeNode(&stored, node)

	filter := live()
	filter["_id"] = node.ID
	update := bson.M{"$set": bson.M{"node": stored, "updated_at": time.Now()}}
	res, err := s.nodes.UpdateOne(ctx, filter, update)
	if err != nil {
		return cv.Node{}, fmt.Errorf("update node: %w", err)
	}
	if res.MatchedCount == 0 {
		return cv.Node{}, notFound(node.ID)
	}
	return stored, nil
}

func (s *MongoStore) DeleteNode(ctx context.Context, id string) error {
	if _, err := s.GetNode(ctx, id); err != nil {
		return err
	}

	// Collect the live subtree breadth-first, then flag it in one update.
	doomed := []string{id}
	frontier := []string{id}
	for len(frontier) > 0 {
		filter := live()
		filter["node.parent_id"] = bson.M{"$in": frontier}

		cur, err := s.nodes.Find(ctx, filter)
		if err != nil {
			return fmt.Errorf("collect subtree: %w", err)
		}
		var records []mongoRecord
		if err := cur.All(ctx, &records); err != nil {
			return fmt.Errorf("decode subtree: %w", err)
		}

		frontier = frontier[:0]
		for _, rec := range records {
			doomed = append(doomed, rec.ID)
			frontier = append(frontier, rec.ID)
		}
	}

	now := time.Now()
	_, err := s.nodes.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": doomed}, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("soft delete subtree: %w", err)
	}
	return nil
}

func (s *MongoStore) SavePositions(ctx context.Context, positions []cv.Position) error {
	if len(positions) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(positions))
	for _, pos := range positions {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": pos.NodeID}).
			SetReplacement(mongoPosition{ID: pos.NodeID, X: pos.X, Y: pos.Y}).
			SetUpsert(true))
	}

	_, err := s.positions.BulkWrite(ctx, models)
	if err != nil {
		return fmt.Errorf("save positions: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
