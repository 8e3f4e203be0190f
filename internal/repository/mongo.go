package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/abrezinsky/snackcounter/internal/models"
)

const snacksCollection = "snacks"

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// snackDocument is the persisted layout of a snack in MongoDB
type snackDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	Category  string             `bson:"category"`
	Img       string             `bson:"img"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d snackDocument) toModel() models.Snack {
	return models.Snack{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     d.Price,
		Category:  models.Category(d.Category),
		Img:       d.Img,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoRepository provides snack data access backed by a MongoDB collection
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongo connects to MongoDB, verifies the connection and ensures indexes
func NewMongo(ctx context.Context, cfg MongoConfig) (*MongoRepository, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(snacksCollection),
		timeout:    cfg.Timeout,
	}

	if err := repo.createIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return repo, nil
}

func (r *MongoRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create snacks indexes: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// ListSnacks returns all snacks, newest first
func (r *MongoRepository) ListSnacks(ctx context.Context) ([]models.Snack, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find snacks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []snackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode snacks: %w", err)
	}

	snacks := make([]models.Snack, 0, len(docs))
	for _, d := range docs {
		snacks = append(snacks, d.toModel())
	}
	return snacks, nil
}

// GetSnack retrieves a single snack by its hex ObjectID
func (r *MongoRepository) GetSnack(ctx context.Context, id string) (*models.Snack, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc snackDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snack: %w", err)
	}

	s := doc.toModel()
	return &s, nil
}

// CreateSnack inserts a new document; ObjectIDs are monotonic per process
func (r *MongoRepository) CreateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	doc := snackDocument{
		ID:        primitive.NewObjectID(),
		Name:      snack.Name,
		Price:     snack.Price,
		Category:  string(snack.Category),
		Img:       snack.Img,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create snack: %w", err)
	}

	s := doc.toModel()
	return &s, nil
}

// UpdateSnack replaces the mutable fields of a snack and returns the new document
func (r *MongoRepository) UpdateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error) {
	oid, err := primitive.ObjectIDFromHex(snack.ID)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":      snack.Name,
			"price":     snack.Price,
			"category":  string(snack.Category),
			"img":       snack.Img,
			"updatedAt": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc snackDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update snack: %w", err)
	}

	s := doc.toModel()
	return &s, nil
}

// DeleteSnack permanently removes a snack
func (r *MongoRepository) DeleteSnack(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete snack: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
