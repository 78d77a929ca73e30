package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/query"
	appErrors "bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

func newUserRepo() *UserRepository {
	return NewUserRepository(NewStore(), utils.NewBcryptHasher(bcrypt.MinCost))
}

func signup(name, email string) *domainUser.User {
	u := &domainUser.User{Name: name, Email: email}
	u.SetPassword("secret12", "secret12")
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo()

	u := signup("Ada", "Ada@Example.com")
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, u.Password, found.Password)
	assert.Empty(t, found.PasswordConfirm)
	assert.True(t, found.Active)

	ok, err := utils.NewBcryptHasher(bcrypt.MinCost).Compare(found.Password, "secret12")
	require.NoError(t, err)
	assert.True(t, ok)

	err = repo.Create(ctx, signup("Other", "ada@example.com"))
	var dupErr *appErrors.DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "ada@example.com", dupErr.Value)
}

func TestUserRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo()

	ada := signup("Ada", "ada@example.com")
	bob := signup("Bob", "bob@example.com")
	require.NoError(t, repo.Create(ctx, ada))
	require.NoError(t, repo.Create(ctx, bob))

	require.NoError(t, repo.Deactivate(ctx, bob.HexID()))
	assert.ErrorIs(t, repo.Deactivate(ctx, bob.HexID()), domainUser.ErrUserNotFound)

	_, err := repo.FindByID(ctx, bob.HexID())
	assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
	_, err = repo.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, domainUser.ErrUserNotFound)

	spec, err := query.Build(query.All(), nil)
	require.NoError(t, err)
	docs, err := repo.Find(ctx, spec, false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Ada", docs[0]["name"])
	assert.NotContains(t, docs[0], "password")
	assert.NotContains(t, docs[0], "active")

	explicit := query.Where(bson.M{"active": false})
	docs, err = repo.Find(ctx, explicit, false)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = repo.Find(ctx, explicit, true)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Bob", docs[0]["name"])

	assert.Equal(t, 2, repo.coll.Len(), "deactivated users stay in storage")
}

func TestUserRepository_ResetToken(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo()
	now := time.Now().UTC()

	u := signup("Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, u))

	u.SetResetToken("hashed", now.Add(10*time.Minute))
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByResetToken(ctx, "hashed", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByResetToken(ctx, "hashed", now.Add(11*time.Minute))
	assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
	_, err = repo.FindByResetToken(ctx, "other", now)
	assert.ErrorIs(t, err, domainUser.ErrUserNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newUserRepo()

	u := signup("Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.Deactivate(ctx, u.HexID()))

	require.NoError(t, repo.Delete(ctx, u.HexID()))
	assert.ErrorIs(t, repo.Delete(ctx, u.HexID()), domainUser.ErrUserNotFound)

	var castErr *appErrors.CastError
	assert.ErrorAs(t, repo.Delete(ctx, "nope"), &castErr)
}
