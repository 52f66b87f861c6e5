package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

const testDim = 4

// fakeQdrant is a minimal in-memory stand-in for the Qdrant REST API.
type fakeQdrant struct {
	mu           sync.Mutex
	exists       bool
	indexFields  []string
	upsertCalls  [][]upsertPoint
	failUpsertAt int // 1-based call number to fail, 0 = never
	searchResult []searchHit
	lastSearch   map[string]interface{}
}

func (f *fakeQdrant) handler(t *testing.T, collection string) http.Handler {
	mux := http.NewServeMux()
	base := "/collections/" + collection

	mux.HandleFunc("/collections", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"collections":[]}}`))
	})
	mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprintf(w, `{"result":{"points_count":42,"config":{"params":{"vectors":{"size":%d,"distance":"Cosine"}}}}}`, testDim)
		case http.MethodPut:
			f.exists = true
			w.Write([]byte(`{"result":true}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc(base+"/index", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FieldName   string `json:"field_name"`
			FieldSchema string `json:"field_schema"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.indexFields = append(f.indexFields, body.FieldName)
		f.mu.Unlock()
		w.Write([]byte(`{"result":true}`))
	})
	mux.HandleFunc(base+"/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []upsertPoint `json:"points"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.upsertCalls = append(f.upsertCalls, body.Points)
		fail := f.failUpsertAt > 0 && len(f.upsertCalls) == f.failUpsertAt
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"result":{"status":"acknowledged"}}`))
	})
	mux.HandleFunc(base+"/points/search", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.lastSearch = body
		hits := f.searchResult
		f.mu.Unlock()
		json.NewEncoder(w).Encode(searchResponse{Result: hits})
	})
	return mux
}

func newTestStore(t *testing.T, fake *fakeQdrant) *Service {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t, "test_chunks"))
	t.Cleanup(srv.Close)
	return NewService(common.QdrantConfig{
		URL:             srv.URL,
		Collection:      "test_chunks",
		UpsertBatchSize: 2,
		Timeout:         5 * time.Second,
	}, testDim, nil)
}

func testChunk(idx, total int) models.DocumentChunk {
	return models.DocumentChunk{
		SourceURL:   "https://docs.example.com/guide",
		Content:     fmt.Sprintf("chunk %d content", idx),
		Embedding:   []float32{1, 2, 3, 4},
		ChunkIndex:  idx,
		TotalChunks: total,
		CreatedAt:   time.Now().UTC(),
		Metadata:    map[string]interface{}{"source_domain": "docs.example.com"},
	}
}

func TestEnsureCollectionCreatesWithIndexes(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	require.NoError(t, s.EnsureCollection(context.Background()))
	assert.True(t, fake.exists)
	assert.ElementsMatch(t, []string{"url", "source_domain"}, fake.indexFields)

	// Second call is served from cache, no further index writes
	require.NoError(t, s.EnsureCollection(context.Background()))
	assert.Len(t, fake.indexFields, 2)
}

func TestEnsureCollectionSkipsExisting(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	s := newTestStore(t, fake)

	require.NoError(t, s.EnsureCollection(context.Background()))
	assert.Empty(t, fake.indexFields, "existing collection must not be re-indexed")
}

func TestUpsertBatchesAndPayload(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	chunks := []models.DocumentChunk{testChunk(0, 5), testChunk(1, 5), testChunk(2, 5), testChunk(3, 5), testChunk(4, 5)}
	require.NoError(t, s.Upsert(context.Background(), chunks))

	require.Len(t, fake.upsertCalls, 3, "5 chunks with batch size 2")
	first := fake.upsertCalls[0][0]
	assert.NotEmpty(t, first.ID, "IDs assigned at store time")
	assert.Equal(t, "https://docs.example.com/guide", first.Payload["url"])
	assert.Equal(t, "chunk 0 content", first.Payload["content"])
	assert.Equal(t, "docs.example.com", first.Payload["source_domain"])
	assert.Contains(t, first.Payload, "created_at")
}

func TestUpsertAbortsOnBatchFailure(t *testing.T) {
	fake := &fakeQdrant{failUpsertAt: 2}
	s := newTestStore(t, fake)

	chunks := []models.DocumentChunk{testChunk(0, 5), testChunk(1, 5), testChunk(2, 5), testChunk(3, 5), testChunk(4, 5)}
	err := s.Upsert(context.Background(), chunks)
	require.Error(t, err)
	assert.Len(t, fake.upsertCalls, 2, "failed batch must abort the remainder")
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	bad := testChunk(0, 1)
	bad.Embedding = []float32{1, 2}
	err := s.Upsert(context.Background(), []models.DocumentChunk{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dim")
}

func TestUpsertRejectsInvalidChunk(t *testing.T) {
	fake := &fakeQdrant{}
	s := newTestStore(t, fake)

	bad := testChunk(3, 2) // index out of range
	err := s.Upsert(context.Background(), []models.DocumentChunk{bad})
	require.Error(t, err)
}

func TestSearchParsesHits(t *testing.T) {
	fake := &fakeQdrant{
		exists: true,
		searchResult: []searchHit{
			{ID: "a", Score: 0.92, Payload: map[string]interface{}{
				"url": "https://docs.example.com/1", "content": "first", "chunk_index": float64(0), "total_chunks": float64(2),
			}},
			{ID: "b", Score: 0.55, Payload: map[string]interface{}{
				"url": "https://docs.example.com/2", "content": "second", "chunk_index": float64(1), "total_chunks": float64(2),
			}},
		},
	}
	s := newTestStore(t, fake)

	hits, err := s.Search(context.Background(), []float32{1, 2, 3, 4}, 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].Content)
	assert.InDelta(t, 0.92, float64(hits[0].Score), 1e-6)
	assert.Equal(t, 1, hits[1].ChunkIndex)
	assert.True(t, strings.HasPrefix(hits[0].SourceURL, "https://"))
}

func TestSearchAppliesPayloadFilter(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	s := newTestStore(t, fake)

	_, err := s.Search(context.Background(), []float32{1, 2, 3, 4}, 5, map[string]string{
		"source_domain": "docs.example.com",
	})
	require.NoError(t, err)

	filter, ok := fake.lastSearch["filter"].(map[string]interface{})
	require.True(t, ok, "search body must carry a filter clause")
	must, ok := filter["must"].([]interface{})
	require.True(t, ok)
	require.Len(t, must, 1)
	clause := must[0].(map[string]interface{})
	assert.Equal(t, "source_domain", clause["key"])
	match := clause["match"].(map[string]interface{})
	assert.Equal(t, "docs.example.com", match["value"])
}

func TestSearchOmitsFilterWhenEmpty(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	s := newTestStore(t, fake)

	_, err := s.Search(context.Background(), []float32{1, 2, 3, 4}, 5, nil)
	require.NoError(t, err)
	_, present := fake.lastSearch["filter"]
	assert.False(t, present, "empty filter must not appear in the request body")
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	s := newTestStore(t, fake)

	_, err := s.Search(context.Background(), []float32{1}, 5, nil)
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	s := newTestStore(t, fake)

	info, err := s.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test_chunks", info.Name)
	assert.Equal(t, testDim, info.VectorSize)
	assert.Equal(t, "Cosine", info.Distance)
	assert.Equal(t, int64(42), info.PointCount)
}
