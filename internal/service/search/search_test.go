package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/todo_service/internal/models"
)

func newTestES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestSearch_DecodesHitSources(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_source": {"id": 7, "title": "Buy groceries", "description": "Milk, Bread, Eggs", "status": "not_done", "owner_id": 3}},
					{"_source": {"id": 9, "title": "Buy milk", "description": "", "status": "done", "owner_id": 3}}
				]
			}
		}`))
	})

	total, todos, err := Search(context.Background(), client, "todo", "groceries", 3, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, todos, 2)

	assert.Equal(t, models.Todo{
		ID:          7,
		Title:       "Buy groceries",
		Description: "Milk, Bread, Eggs",
		Status:      "not_done",
		OwnerID:     3,
	}, todos[0])
	assert.Equal(t, uint(9), todos[1].ID)
	assert.Equal(t, "Buy milk", todos[1].Title)

	assert.Equal(t, "/todo/_search", gotPath)

	// the owner filter travels inside the query body
	raw, err := json.Marshal(gotBody)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"owner_id":3`)
	assert.Contains(t, string(raw), `"groceries"`)
}

func TestSearch_ErrorStatus(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	})

	_, _, err := Search(context.Background(), client, "todo", "q", 1, 0, 10)
	require.Error(t, err)
}

func TestIndexTodo_UsesIDAsDocumentID(t *testing.T) {
	var gotPath, gotMethod string
	var gotDoc models.Todo
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		_, _ = w.Write([]byte(`{"result": "created"}`))
	})

	todo := &models.Todo{ID: 7, Title: "Buy groceries", Status: "not_done", OwnerID: 3}
	require.NoError(t, IndexTodo(context.Background(), client, "todo", todo))

	assert.Equal(t, "/todo/_doc/7", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, *todo, gotDoc)
}

func TestDeleteTodo_ToleratesMissingDocument(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result": "not_found"}`))
	})

	require.NoError(t, DeleteTodo(context.Background(), client, "todo", 7))
}
