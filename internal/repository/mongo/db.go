// Package mongo implements the repositories on MongoDB. Documents use string
// UUIDs as _id; plan children are embedded in their parent document.
package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/ecofit/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	profileCollectionName      = "profiles"
	invitationCollectionName   = "invitations"
	dietCollectionName         = "diets"
	workoutCollectionName      = "workouts"
	planRequestCollectionName  = "plan_requests"
	sessionCollectionName      = "workout_sessions"
	gamificationCollectionName = "user_gamification"
	scheduleCollectionName     = "client_workout_schedules"
)

// ConnectDB establishes a connection to MongoDB and pings the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The connection may succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// Options tune the store.
type Options struct {
	// Transactions enables multi-document transactions, which need a replica set.
	Transactions bool
}

// NewStore wires every repository to db.
func NewStore(client *mongo.Client, db *mongo.Database, opts Options) *repository.Store {
	return &repository.Store{
		Profiles:     &profileRepo{collection: db.Collection(profileCollectionName)},
		Invitations:  &invitationRepo{collection: db.Collection(invitationCollectionName)},
		Diets:        &dietRepo{collection: db.Collection(dietCollectionName)},
		Workouts:     &workoutRepo{collection: db.Collection(workoutCollectionName)},
		PlanRequests: &planRequestRepo{collection: db.Collection(planRequestCollectionName)},
		Sessions:     &sessionRepo{collection: db.Collection(sessionCollectionName)},
		Gamification: &gamificationRepo{collection: db.Collection(gamificationCollectionName)},
		Schedules:    &scheduleRepo{collection: db.Collection(scheduleCollectionName)},
		Tx:           &Transactor{client: client, enabled: opts.Transactions},
		Close: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	}
}

// EnsureIndexes creates the unique and lookup indexes of every collection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		profileCollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		invitationCollectionName: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "usedAt", Value: -1}}},
			{Keys: bson.D{{Key: "invitedBy", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		dietCollectionName: {
			{Keys: bson.D{{Key: "professionalId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		workoutCollectionName: {
			{Keys: bson.D{{Key: "professionalId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		planRequestCollectionName: {
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "professionalId", Value: 1}}},
		},
		sessionCollectionName: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "workoutId", Value: 1}, {Key: "date", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}}},
		},
		scheduleCollectionName: {
			{
				Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "dayOfWeek", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// Transactor runs a function in a session transaction when enabled. Without
// transactions the steps run one after another with no rollback.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}
