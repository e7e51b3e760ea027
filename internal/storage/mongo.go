package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"composer/internal/codec"
	"composer/internal/domain"
)

// MongoTemplateStore keeps templates in a MongoDB collection. The component
// tree is stored as JSON text in canonical form.
type MongoTemplateStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoTemplate struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Description    string    `bson:"description"`
	ComponentsJSON string    `bson:"componentsJson"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

// NewMongoTemplateStore connects to uri and uses database.templates.
func NewMongoTemplateStore(uri, database string) (*MongoTemplateStore, error) {
	if database == "" {
		database = "composer"
	}
	log.Printf("[MONGO] Connecting, database: %s", database)
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoTemplateStore{
		client: client,
		coll:   client.Database(database).Collection("templates"),
	}, nil
}

func (s *MongoTemplateStore) SaveTemplate(ctx context.Context, t *domain.Template) error {
	comps, err := codec.MarshalComponents(t.Components)
	if err != nil {
		return fmt.Errorf("encode components: %w", err)
	}
	doc := mongoTemplate{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		ComponentsJSON: string(comps),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save template %s: %w", t.ID, err)
	}
	return nil
}

func (s *MongoTemplateStore) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	var doc mongoTemplate
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get template %s: %w", id, domain.ErrTemplateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return doc.toDomain()
}

func (s *MongoTemplateStore) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTemplate
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]domain.Template, 0, len(docs))
	for _, d := range docs {
		t, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *MongoTemplateStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoTemplateStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d mongoTemplate) toDomain() (*domain.Template, error) {
	t := &domain.Template{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	components, err := codec.UnmarshalComponents([]byte(d.ComponentsJSON))
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", d.ID, err)
	}
	t.Components = components
	return t, nil
}
