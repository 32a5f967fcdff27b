package mongo

import (
	"context"
	"time"

	"alcyxob/ecofit/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sessionRepo implements repository.SessionRepository.
type sessionRepo struct {
	collection *mongo.Collection
}

func sessionKey(userID, workoutID uuid.UUID, date time.Time) bson.M {
	return bson.M{"userId": idString(userID), "workoutId": idString(workoutID), "date": domain.DateOf(date)}
}

func (r *sessionRepo) Get(ctx context.Context, userID, workoutID uuid.UUID, date time.Time) (*domain.WorkoutSession, error) {
	var doc sessionDocument
	if err := r.collection.FindOne(ctx, sessionKey(userID, workoutID, date)).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	s := doc.toDomain()
	return &s, nil
}

// Upsert keys on (user, workout, date) so the first writer's _id is kept.
func (r *sessionRepo) Upsert(ctx context.Context, s *domain.WorkoutSession) error {
	doc := toSessionDocument(s)
	update := bson.M{
		"$set": bson.M{
			"completedExerciseIds": doc.CompletedExerciseIDs,
			"completedCount":       doc.CompletedCount,
			"totalCount":           doc.TotalCount,
			"completed":            doc.Completed,
			"xpEarned":             doc.XPEarned,
			"completedAt":          doc.CompletedAt,
			"updatedAt":            doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":       doc.ID,
			"createdAt": doc.CreatedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, sessionKey(s.UserID, s.WorkoutID, s.Date), update, options.Update().SetUpsert(true))
	return mapErr(err)
}

func (r *sessionRepo) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.WorkoutSession, error) {
	filter := bson.M{
		"userId": idString(userID),
		"date":   bson.M{"$gte": domain.DateOf(from), "$lte": domain.DateOf(to)},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []sessionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	sessions := make([]domain.WorkoutSession, len(docs))
	for i, d := range docs {
		sessions[i] = d.toDomain()
	}
	return sessions, nil
}

// gamificationRepo implements repository.GamificationRepository.
type gamificationRepo struct {
	collection *mongo.Collection
}

func (r *gamificationRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserGamification, error) {
	var doc gamificationDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": idString(userID)}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *gamificationRepo) Upsert(ctx context.Context, g *domain.UserGamification) error {
	doc := toGamificationDocument(g)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.UserID}, doc, options.Replace().SetUpsert(true))
	return mapErr(err)
}

// scheduleRepo implements repository.ScheduleRepository.
type scheduleRepo struct {
	collection *mongo.Collection
}

func (r *scheduleRepo) GetByClient(ctx context.Context, clientID uuid.UUID) ([]domain.ScheduleEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"clientId": idString(clientID)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []scheduleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	entries := make([]domain.ScheduleEntry, len(docs))
	for i, d := range docs {
		entries[i] = domain.ScheduleEntry{
			ClientID: parseID(d.ClientID), DayOfWeek: d.DayOfWeek, Label: d.Label, UpdatedAt: d.UpdatedAt.UTC(),
		}
	}
	return entries, nil
}

func (r *scheduleRepo) Replace(ctx context.Context, clientID uuid.UUID, entries []domain.ScheduleEntry) error {
	models := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		doc := scheduleDocument{ClientID: idString(clientID), DayOfWeek: e.DayOfWeek, Label: e.Label, UpdatedAt: e.UpdatedAt}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"clientId": doc.ClientID, "dayOfWeek": doc.DayOfWeek}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := r.collection.BulkWrite(ctx, models)
	return mapErr(err)
}
