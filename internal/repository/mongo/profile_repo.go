package mongo

import (
	"context"
	"time"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// profileRepo implements repository.ProfileRepository.
type profileRepo struct {
	collection *mongo.Collection
}

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.collection.InsertOne(ctx, toProfileDocument(p))
	return mapErr(err)
}

func (r *profileRepo) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	var doc profileDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": idString(id)})
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *profileRepo) List(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []profileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, len(docs))
	for i, d := range docs {
		profiles[i] = d.toDomain()
	}
	return profiles, nil
}

func (r *profileRepo) Update(ctx context.Context, p *domain.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	set := bson.M{
		"name":         p.Name,
		"role":         p.Role,
		"passwordHash": p.PasswordHash,
		"updatedAt":    p.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if p.ProfessionalType != nil {
		set["professionalType"] = *p.ProfessionalType
	} else {
		update["$unset"] = bson.M{"professionalType": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": idString(p.ID)}, update)
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// invitationRepo implements repository.InvitationRepository.
type invitationRepo struct {
	collection *mongo.Collection
}

func (r *invitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.collection.InsertOne(ctx, toInvitationDocument(inv))
	return mapErr(err)
}

func (r *invitationRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*domain.Invitation, error) {
	var doc invitationDocument
	if err := r.collection.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	inv := doc.toDomain()
	return &inv, nil
}

func (r *invitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	return r.findOne(ctx, bson.M{"token": token})
}

func (r *invitationRepo) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	filter := bson.M{"_id": idString(id), "usedAt": nil}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"usedAt": usedAt}})
	if err != nil {
		return mapErr(err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": idString(id)})
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *invitationRepo) ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]domain.Invitation, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"invitedBy": idString(inviterID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []invitationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	invitations := make([]domain.Invitation, len(docs))
	for i, d := range docs {
		invitations[i] = d.toDomain()
	}
	return invitations, nil
}

func (r *invitationRepo) LatestUsedByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	filter := bson.M{
		"email":     email,
		"usedAt":    bson.M{"$ne": nil},
		"invitedBy": bson.M{"$exists": true, "$ne": nil},
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "usedAt", Value: -1}}))
}
