package mongo

import (
	"context"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// planHeaderSet lists the header fields written by Update.
func planHeaderSet(f planFields) bson.M {
	return bson.M{
		"clientId":      f.ClientID,
		"name":          f.Name,
		"objective":     f.Objective,
		"methodology":   f.Methodology,
		"notes":         f.Notes,
		"status":        f.Status,
		"submittedAt":   f.SubmittedAt,
		"sentAt":        f.SentAt,
		"startDate":     f.StartDate,
		"endDate":       f.EndDate,
		"durationWeeks": f.DurationWeeks,
		"updatedAt":     f.UpdatedAt,
	}
}

func updateByID(ctx context.Context, c *mongo.Collection, id uuid.UUID, update bson.M) error {
	result, err := c.UpdateOne(ctx, bson.M{"_id": idString(id)}, update)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, c *mongo.Collection, id uuid.UUID) error {
	result, err := c.DeleteOne(ctx, bson.M{"_id": idString(id)})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// dietRepo implements repository.DietRepository with meals embedded.
type dietRepo struct {
	collection *mongo.Collection
}

func (r *dietRepo) Create(ctx context.Context, d *domain.Diet) error {
	_, err := r.collection.InsertOne(ctx, toDietDocument(d))
	return mapErr(err)
}

func (r *dietRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diet, error) {
	var doc dietDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": idString(id)}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	d := doc.toDomain()
	return &d, nil
}

func (r *dietRepo) find(ctx context.Context, filter bson.M) ([]domain.Diet, error) {
	cursor, err := r.collection.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []dietDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	diets := make([]domain.Diet, len(docs))
	for i, doc := range docs {
		diets[i] = doc.toDomain()
	}
	return diets, nil
}

func (r *dietRepo) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.Diet, error) {
	return r.find(ctx, bson.M{"professionalId": idString(professionalID)})
}

func (r *dietRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Diet, error) {
	return r.find(ctx, bson.M{"clientId": idString(clientID)})
}

func (r *dietRepo) Update(ctx context.Context, d *domain.Diet) error {
	return updateByID(ctx, r.collection, d.ID, bson.M{"$set": planHeaderSet(toPlanFields(&d.Plan))})
}

// ReplaceMeals swaps the embedded array in one document write.
func (r *dietRepo) ReplaceMeals(ctx context.Context, dietID uuid.UUID, meals []domain.DietMeal) error {
	return updateByID(ctx, r.collection, dietID, bson.M{"$set": bson.M{"meals": toMealDocuments(meals)}})
}

func (r *dietRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.collection, id)
}

// workoutRepo implements repository.WorkoutRepository with exercises embedded.
type workoutRepo struct {
	collection *mongo.Collection
}

func (r *workoutRepo) Create(ctx context.Context, w *domain.Workout) error {
	_, err := r.collection.InsertOne(ctx, toWorkoutDocument(w))
	return mapErr(err)
}

func (r *workoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workout, error) {
	var doc workoutDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": idString(id)}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	w := doc.toDomain()
	return &w, nil
}

func (r *workoutRepo) find(ctx context.Context, filter bson.M) ([]domain.Workout, error) {
	cursor, err := r.collection.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	workouts := make([]domain.Workout, len(docs))
	for i, doc := range docs {
		workouts[i] = doc.toDomain()
	}
	return workouts, nil
}

func (r *workoutRepo) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"professionalId": idString(professionalID)})
}

func (r *workoutRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"clientId": idString(clientID)})
}

func (r *workoutRepo) Update(ctx context.Context, w *domain.Workout) error {
	set := planHeaderSet(toPlanFields(&w.Plan))
	set["division"] = w.Division
	set["dayOfWeek"] = w.DayOfWeek
	return updateByID(ctx, r.collection, w.ID, bson.M{"$set": set})
}

func (r *workoutRepo) ReplaceExercises(ctx context.Context, workoutID uuid.UUID, exercises []domain.WorkoutExercise) error {
	return updateByID(ctx, r.collection, workoutID, bson.M{"$set": bson.M{"exercises": toExerciseDocuments(exercises)}})
}

func (r *workoutRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.collection, id)
}

// planRequestRepo implements repository.PlanRequestRepository.
type planRequestRepo struct {
	collection *mongo.Collection
}

func (r *planRequestRepo) Create(ctx context.Context, req *domain.PlanRequest) error {
	_, err := r.collection.InsertOne(ctx, toPlanRequestDocument(req))
	return mapErr(err)
}

func (r *planRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanRequest, error) {
	var doc planRequestDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": idString(id)}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	req := doc.toDomain()
	return &req, nil
}

func (r *planRequestRepo) Update(ctx context.Context, req *domain.PlanRequest) error {
	doc := toPlanRequestDocument(req)
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *planRequestRepo) find(ctx context.Context, filter bson.M) ([]domain.PlanRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []planRequestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	requests := make([]domain.PlanRequest, len(docs))
	for i, doc := range docs {
		requests[i] = doc.toDomain()
	}
	return requests, nil
}

func (r *planRequestRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.PlanRequest, error) {
	return r.find(ctx, bson.M{"clientId": idString(clientID)})
}

func (r *planRequestRepo) ListOpenForProfessional(ctx context.Context, professionalID uuid.UUID) ([]domain.PlanRequest, error) {
	return r.find(ctx, bson.M{
		"status": bson.M{"$in": bson.A{domain.PlanRequestPending, domain.PlanRequestInProgress}},
		"$or": bson.A{
			bson.M{"professionalId": nil},
			bson.M{"professionalId": idString(professionalID)},
		},
	})
}
