package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/query"
	"bookstore-api/pkg/utils"
)

// UserRepository implements domainUser.Repository on a MongoDB collection.
type UserRepository struct {
	coll   *mongo.Collection
	hasher domainUser.PasswordHasher
	now    func() time.Time
}

func NewUserRepository(db *mongo.Database, hasher domainUser.PasswordHasher) *UserRepository {
	return &UserRepository{
		coll:   db.Collection(UsersCollection),
		hasher: hasher,
		now:    time.Now,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	if err := domainUser.BeforeSave(u, r.hasher, r.now().UTC()); err != nil {
		return err
	}

	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return writeError(err, "failed to insert user", "email", u.Email)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainUser.User) error {
	if err := domainUser.BeforeSave(u, r.hasher, r.now().UTC()); err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return writeError(err, "failed to save user", "email", u.Email)
	}
	if res.MatchedCount == 0 {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domainUser.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	return r.findOne(ctx, bson.M{"email": utils.SanitizeEmail(email)})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domainUser.User, error) {
	return r.findOne(ctx, bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainUser.User, error) {
	var u domainUser.User
	err := r.coll.FindOne(ctx, domainUser.ActiveScope(filter, false)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainUser.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	return &u, nil
}

func (r *UserRepository) Find(ctx context.Context, spec *query.Spec, includeInactive bool) ([]query.Document, error) {
	filter := domainUser.ActiveScope(spec.Filter, includeInactive)

	docs, err := find(ctx, r.coll, filter, spec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	for _, doc := range docs {
		domainUser.StripPrivate(doc)
	}
	return docs, nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"active": false, "updatedAt": r.now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, domainUser.ActiveScope(bson.M{"_id": oid}, false), update)
	if err != nil {
		return errors.Wrap(err, "failed to deactivate user")
	}
	if res.MatchedCount == 0 {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	if res.DeletedCount == 0 {
		return domainUser.ErrUserNotFound
	}
	return nil
}
