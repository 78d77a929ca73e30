package memory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/query"
	appErrors "bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

type UserRepository struct {
	coll   *Collection
	hasher domainUser.PasswordHasher
	now    func() time.Time
}

func NewUserRepository(store *Store, hasher domainUser.PasswordHasher) *UserRepository {
	return &UserRepository{coll: store.Users, hasher: hasher, now: time.Now}
}

func (r *UserRepository) Create(_ context.Context, u *domainUser.User) error {
	if err := domainUser.BeforeSave(u, r.hasher, r.now().UTC()); err != nil {
		return err
	}
	return r.coll.InsertOne(u)
}

func (r *UserRepository) Save(_ context.Context, u *domainUser.User) error {
	if err := domainUser.BeforeSave(u, r.hasher, r.now().UTC()); err != nil {
		return err
	}

	ok, err := r.coll.ReplaceOne(bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if !ok {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domainUser.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domainUser.User, error) {
	return r.findOne(bson.M{"email": utils.SanitizeEmail(email)})
}

func (r *UserRepository) FindByResetToken(_ context.Context, hashedToken string, now time.Time) (*domainUser.User, error) {
	return r.findOne(bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) findOne(filter bson.M) (*domainUser.User, error) {
	var u domainUser.User
	found, err := r.coll.FindOne(domainUser.ActiveScope(filter, false), &u)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	if !found {
		return nil, domainUser.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Find(_ context.Context, spec *query.Spec, includeInactive bool) ([]query.Document, error) {
	docs, err := r.coll.Find(domainUser.ActiveScope(spec.Filter, includeInactive), spec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	for _, doc := range docs {
		domainUser.StripPrivate(doc)
	}
	return docs, nil
}

func (r *UserRepository) Deactivate(_ context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	ok, err := r.coll.UpdateOne(domainUser.ActiveScope(bson.M{"_id": oid}, false),
		bson.M{"active": false, "updatedAt": r.now().UTC()})
	if err != nil {
		return errors.Wrap(err, "failed to deactivate user")
	}
	if !ok {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	ok, err := r.coll.DeleteOne(bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	if !ok {
		return domainUser.ErrUserNotFound
	}
	return nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &appErrors.CastError{Path: "_id", Value: id, Kind: "ObjectId", Err: err}
	}
	return oid, nil
}
