package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadview-dev/threadview/internal/domain"
	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	prefer string
	apikey string
	body   []byte
}

// newServer returns a table API stub that records the last request and
// replies with the given status and rows.
func newServer(t *testing.T, status int, rows string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.prefer = r.Header.Get("Prefer")
		rec.apikey = r.Header.Get("apikey")
		rec.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(rows))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestFetchOne(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"id":5,"title":"t","author_id":1}]`)
	col := NewCollection[domain.Thread, domain.ThreadId](New(srv.URL, "secret"), "threads")

	got, err := col.FetchOne(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreadId(5), got.Id)
	assert.Equal(t, "t", got.Title)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/threads", rec.path)
	assert.Contains(t, rec.query, "id=eq.5")
	assert.Equal(t, "secret", rec.apikey)
}

func TestFetchOneNotFound(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	col := NewCollection[domain.Thread, domain.ThreadId](New(srv.URL, ""), "threads")

	_, err := col.FetchOne(context.Background(), 5)
	assert.ErrorIs(t, err, internal_errors.NotFound)
}

func TestFetchMany(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"id":1},{"id":2}]`)
	col := NewCollection[domain.Post, domain.PostId](New(srv.URL, ""), "posts")

	got, err := col.FetchMany(context.Background(),
		persistence.Filter{"thread_id": int64(7)},
		persistence.Order{Field: "created_at"},
	)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, rec.query, "thread_id=eq.7")
	assert.Contains(t, rec.query, "order=created_at.asc")
}

func TestFetchManyInFilter(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[]`)
	col := NewCollection[domain.Vote, domain.VoteId](New(srv.URL, ""), "votes")

	_, err := col.FetchMany(context.Background(), persistence.Filter{"post_id": []int64{1, 2, 3}}, persistence.Order{})
	require.NoError(t, err)
	assert.Contains(t, rec.query, "post_id=in.%281%2C2%2C3%29")
}

func TestInsert(t *testing.T) {
	srv, rec := newServer(t, http.StatusCreated, `[{"id":"abc","post_id":1,"user_id":2,"is_like":true}]`)
	col := NewCollection[domain.Vote, domain.VoteId](New(srv.URL, ""), "votes")

	got, err := col.Insert(context.Background(), domain.Vote{PostId: 1, UserId: 2, IsLike: true})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Id)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "return=representation", rec.prefer)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, float64(1), sent["post_id"])
	assert.Equal(t, true, sent["is_like"])
}

func TestUpdate(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"id":"abc","is_like":false}]`)
	col := NewCollection[domain.Vote, domain.VoteId](New(srv.URL, ""), "votes")

	got, err := col.Update(context.Background(), "abc", persistence.Patch{"is_like": false})
	require.NoError(t, err)
	assert.False(t, got.IsLike)

	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Contains(t, rec.query, "id=eq.abc")
}

func TestUpdateNoMatch(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	col := NewCollection[domain.Vote, domain.VoteId](New(srv.URL, ""), "votes")

	_, err := col.Update(context.Background(), "missing", persistence.Patch{"is_like": false})
	assert.ErrorIs(t, err, internal_errors.NotFound)
}

func TestDelete(t *testing.T) {
	srv, rec := newServer(t, http.StatusNoContent, ``)
	col := NewCollection[domain.Vote, domain.VoteId](New(srv.URL, ""), "votes")

	require.NoError(t, col.Delete(context.Background(), "abc"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Contains(t, rec.query, "id=eq.abc")
}

func TestDeleteWhere(t *testing.T) {
	srv, rec := newServer(t, http.StatusNoContent, ``)
	col := NewCollection[domain.SavedThread, int64](New(srv.URL, ""), "saved_threads")

	require.NoError(t, col.DeleteWhere(context.Background(), persistence.Filter{"user_id": int64(1)}))
	assert.Contains(t, rec.query, "user_id=eq.1")
}

func TestUpsert(t *testing.T) {
	srv, rec := newServer(t, http.StatusCreated, `[{"id":9,"user_id":1,"thread_id":10}]`)
	col := NewCollection[domain.SavedThread, int64](New(srv.URL, ""), "saved_threads", "user_id", "thread_id")

	got, err := col.Upsert(context.Background(),
		persistence.Filter{"user_id": int64(1), "thread_id": int64(10)},
		domain.SavedThread{UserId: 1, ThreadId: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Id)

	assert.Equal(t, "resolution=merge-duplicates,return=representation", rec.prefer)
	assert.Contains(t, rec.query, "on_conflict=user_id%2Cthread_id")
}

func TestErrorStatusMapping(t *testing.T) {
	t.Run("404 maps to NotFound", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusNotFound, `{}`)
		col := NewCollection[domain.Thread, domain.ThreadId](New(srv.URL, ""), "threads")
		_, err := col.FetchOne(context.Background(), 1)
		assert.ErrorIs(t, err, internal_errors.NotFound)
	})

	t.Run("5xx carries the status", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusInternalServerError, `oops`)
		col := NewCollection[domain.Thread, domain.ThreadId](New(srv.URL, ""), "threads")
		_, err := col.FetchOne(context.Background(), 1)
		var statusErr *internal_errors.ErrorWithStatusCode
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	})
}
