package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POSTS_BACK-END/internal/config"
	"POSTS_BACK-END/internal/models"
)

// newTestPool connects to TEST_DATABASE_URL, applies the schema and empties
// the tables. Tests are skipped without a database.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn, config.DatabaseConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE posts, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func mustCreateUser(t *testing.T, users *UserRepository, email string) *models.User {
	t.Helper()
	u, err := users.Create(context.Background(), email, "$2a$10$digest", nil)
	require.NoError(t, err)
	return u
}

func TestUserRepository(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	phone := "+66812345678"
	created, err := users.Create(ctx, "a@example.com", "$2a$10$digest", &phone)
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.NotNil(t, created.PhoneNumber)
	assert.Equal(t, phone, *created.PhoneNumber)

	byID, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", byID.Email)
	assert.Equal(t, "$2a$10$digest", byID.PasswordHash)

	byEmail, err := users.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = users.Create(ctx, "a@example.com", "x", nil)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = users.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepositoryLifecycle(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	posts := NewPostRepository(pool)
	ctx := context.Background()

	owner := mustCreateUser(t, users, "owner@example.com")

	post, err := posts.Create(ctx, owner.ID, models.PostInput{Title: "a", Content: "b", Published: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)
	assert.Equal(t, owner.ID, post.OwnerID)
	assert.True(t, post.Published)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post, got)

	updated, err := posts.Update(ctx, post.ID, owner.ID, models.PostInput{Title: "c", Content: "d", Published: false})
	require.NoError(t, err)
	assert.Equal(t, "c", updated.Title)
	assert.Equal(t, "d", updated.Content)
	assert.False(t, updated.Published)
	assert.Equal(t, owner.ID, updated.OwnerID)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)

	require.NoError(t, posts.Delete(ctx, post.ID, owner.ID))
	_, err = posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepositoryOwnership(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	posts := NewPostRepository(pool)
	ctx := context.Background()

	owner := mustCreateUser(t, users, "owner@example.com")
	other := mustCreateUser(t, users, "other@example.com")

	post, err := posts.Create(ctx, owner.ID, models.PostInput{Title: "a", Content: "b", Published: true})
	require.NoError(t, err)

	_, err = posts.Update(ctx, post.ID, other.ID, models.PostInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, posts.Delete(ctx, post.ID, other.ID), ErrNotOwner)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)

	_, err = posts.Update(ctx, post.ID+1, owner.ID, models.PostInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, posts.Delete(ctx, post.ID+1, owner.ID), ErrNotFound)
}

func TestPostRepositoryList(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserRepository(pool)
	posts := NewPostRepository(pool)
	ctx := context.Background()

	a := mustCreateUser(t, users, "a@example.com")
	b := mustCreateUser(t, users, "b@example.com")
	for i, title := range []string{"Go tips", "Postgres 100%", "go_routines"} {
		owner := a
		if i%2 == 1 {
			owner = b
		}
		_, err := posts.Create(ctx, owner.ID, models.PostInput{Title: title, Content: "c", Published: true})
		require.NoError(t, err)
	}

	all, err := posts.List(ctx, models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	page, err := posts.List(ctx, models.PostFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	found, err := posts.List(ctx, models.PostFilter{Search: "GO"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	literal, err := posts.List(ctx, models.PostFilter{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "Postgres 100%", literal[0].Title)

	underscore, err := posts.List(ctx, models.PostFilter{Search: "o_r"})
	require.NoError(t, err)
	assert.Len(t, underscore, 1)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	err := classify("op", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	err = classify("op", &pgconn.PgError{Code: "23505", ConstraintName: "other_key"})
	assert.False(t, errors.Is(err, ErrDuplicateEmail))

	err = classify("op", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Cancellation belongs to the caller; it stays visible for the handler
	err = classify("op", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrStoreUnavailable))

	err = classify("op", ErrNotOwner)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.EqualError(t, err, "op: not the owner")
}
