package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/userkeeper-server/internal/apierrors"
	"github.com/dtroode/userkeeper-server/internal/model"
	"github.com/dtroode/userkeeper-server/internal/repository/sqlite"
	"github.com/dtroode/userkeeper-server/internal/service"
	"github.com/dtroode/userkeeper-server/internal/testutil"
)

type fixture struct {
	svc  *service.User
	path string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.db")
	store, err := sqlite.Open(path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return fixture{
		svc:  service.NewUser(store, nil, testutil.MakeNoopLogger()),
		path: path,
	}
}

// addPost inserts a record referencing the user through a separate handle.
func (f fixture) addPost(t *testing.T, authorID int64) {
	t.Helper()

	db, err := sql.Open("sqlite", sqlite.DSN(f.path))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO posts (author_id, title) VALUES (?, ?)`, authorID, "first post")
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func TestUserScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.Create(ctx, model.UserFields{Email: "a@x.com"})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	_, err = f.svc.Create(ctx, model.UserFields{Email: "a@x.com"})
	require.ErrorIs(t, err, apierrors.ErrConflict)

	got, err := f.svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := f.svc.Update(ctx, 1, model.UserPatch{Email: strPtr("b@x.com")})
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", updated.Email)

	removed, err := f.svc.Remove(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", removed.Email)
	assert.Equal(t, int64(1), removed.ID)

	_, err = f.svc.Get(ctx, 1)
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestUserProperties_DuplicateEmailDoesNotInsert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := f.svc.Create(ctx, model.UserFields{Email: email})
		require.NoError(t, err)
	}

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := f.svc.Create(ctx, model.UserFields{Email: email, Name: "again"})
		assert.ErrorIs(t, err, apierrors.ErrConflict, email)
	}

	users, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestUserProperties_MissingIDsDoNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	existing, err := f.svc.Create(ctx, model.UserFields{Email: "keep@x.com", Name: "Keep"})
	require.NoError(t, err)

	for _, id := range []int64{0, -1, existing.ID + 1, 1 << 40} {
		_, err := f.svc.Get(ctx, id)
		assert.ErrorIs(t, err, apierrors.ErrNotFound)

		_, err = f.svc.Update(ctx, id, model.UserPatch{Name: strPtr("changed")})
		assert.ErrorIs(t, err, apierrors.ErrNotFound)

		_, err = f.svc.Remove(ctx, id)
		assert.ErrorIs(t, err, apierrors.ErrNotFound)
	}

	users, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, existing, users[0])
}

func TestUserProperties_UpdateMergesPresentFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.svc.Create(ctx, model.UserFields{
		Email:      "merge@x.com",
		Name:       "Before",
		Attributes: map[string]any{"plan": "free"},
	})
	require.NoError(t, err)

	after, err := f.svc.Update(ctx, before.ID, model.UserPatch{Name: strPtr("After")})
	require.NoError(t, err)
	assert.Equal(t, "After", after.Name)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.Attributes, after.Attributes)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	after, err = f.svc.Update(ctx, before.ID, model.UserPatch{Attributes: map[string]any{"plan": "pro"}})
	require.NoError(t, err)
	assert.Equal(t, "After", after.Name)
	assert.Equal(t, map[string]any{"plan": "pro"}, after.Attributes)
}

func TestUserProperties_RemoveReferencedUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author, err := f.svc.Create(ctx, model.UserFields{Email: "author@x.com"})
	require.NoError(t, err)
	f.addPost(t, author.ID)

	_, err = f.svc.Remove(ctx, author.ID)
	require.ErrorIs(t, err, apierrors.ErrConflict)
	assert.Equal(t, "Cannot delete user, it is being referenced by another record", err.Error())

	still, err := f.svc.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author, still)
}

func TestUserProperties_UpdateToTakenEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, model.UserFields{Email: "first@x.com"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, model.UserFields{Email: "second@x.com"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, second.ID, model.UserPatch{Email: strPtr("first@x.com")})
	require.ErrorIs(t, err, apierrors.ErrConflict)

	got, err := f.svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "second@x.com", got.Email)
}

// Concurrent creates with one email race past the pre-check; the unique index
// must still leave exactly one row.
func TestUserProperties_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, model.UserFields{Email: "race@x.com"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apierrors.ErrConflict)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	users, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
