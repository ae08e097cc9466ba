package practice

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/models"
)

// MongoBank is a QuestionBank backed by a MongoDB collection. Sampling uses
// the server-side $sample stage.
type MongoBank struct {
	col *mongo.Collection
}

func NewMongoBank(db *mongo.Database) *MongoBank {
	return &MongoBank{col: db.Collection("questions")}
}

type questionDoc struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Text         string        `bson:"text"`
	Options      []string      `bson:"options"`
	CorrectIndex *int          `bson:"correctIndex,omitempty"`
	Explanation  string        `bson:"explanation"`
	Category     string        `bson:"category"`
	Difficulty   string        `bson:"difficulty"`
	Topics       []string      `bson:"topics"`
	CreatedAt    time.Time     `bson:"createdAt"`
}

func (d questionDoc) toModel() models.Question {
	return models.Question{
		ID:           d.ID.Hex(),
		Text:         d.Text,
		Options:      d.Options,
		CorrectIndex: d.CorrectIndex,
		Explanation:  d.Explanation,
		Category:     d.Category,
		Difficulty:   d.Difficulty,
		Topics:       d.Topics,
		CreatedAt:    d.CreatedAt,
	}
}

// EnsureIndexes creates the category/difficulty index used by sampling.
func (b *MongoBank) EnsureIndexes(ctx context.Context) error {
	_, err := b.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "difficulty", Value: 1}},
	})
	if err != nil {
		return apperr.Storage("create question index", err)
	}
	return nil
}

func samplePipeline(q SampleQuery) mongo.Pipeline {
	var difficulty interface{} = q.Difficulty
	if q.OtherDifficulty {
		difficulty = bson.M{"$ne": q.Difficulty}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"category": q.Category, "difficulty": difficulty}}},
		{{Key: "$sample", Value: bson.M{"size": q.Size}}},
	}
}

func (b *MongoBank) Sample(ctx context.Context, q SampleQuery) ([]models.Question, error) {
	cursor, err := b.col.Aggregate(ctx, samplePipeline(q))
	if err != nil {
		return nil, apperr.Storage("sample questions", err)
	}
	defer cursor.Close(ctx)

	var docs []questionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Storage("decode sampled questions", err)
	}
	return docsToQuestions(docs), nil
}

func (b *MongoBank) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.Question{}, nil
	}

	cursor, err := b.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, apperr.Storage("find questions", err)
	}
	defer cursor.Close(ctx)

	var docs []questionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Storage("decode questions", err)
	}
	return docsToQuestions(docs), nil
}

// objectIDs keeps the ids written exactly as Hex renders them, so every
// returned question's ID matches the string the caller asked for.
func objectIDs(ids []string) []bson.ObjectID {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil || oid.Hex() != id {
			continue
		}
		oids = append(oids, oid)
	}
	return oids
}

func (b *MongoBank) InsertQuestions(ctx context.Context, questions []models.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(questions))
	for _, q := range questions {
		createdAt := q.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		docs = append(docs, questionDoc{
			ID:           bson.NewObjectID(),
			Text:         q.Text,
			Options:      nonNil(q.Options),
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
			Category:     q.Category,
			Difficulty:   q.Difficulty,
			Topics:       nonNil(q.Topics),
			CreatedAt:    createdAt,
		})
	}

	res, err := b.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, apperr.Storage("insert questions", err)
	}
	return len(res.InsertedIDs), nil
}

func (b *MongoBank) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := b.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Storage("count questions", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Category string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, apperr.Storage("decode question counts", err)
	}

	counts := make([]models.CategoryCount, 0, len(groups))
	for _, g := range groups {
		counts = append(counts, models.CategoryCount{Category: g.Category, Count: g.Count})
	}
	return counts, nil
}

func docsToQuestions(docs []questionDoc) []models.Question {
	out := make([]models.Question, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out
}
