package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/database"
	"mobility-portal/internal/common/logger"
)

// fakeCluster answers the few endpoints the store uses.
type fakeCluster struct {
	mu      sync.Mutex
	indexed map[string][]byte
	queries []map[string]interface{}
	hits    []map[string]interface{}
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	switch {
	case strings.Contains(r.URL.Path, "/_doc/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		f.indexed[id] = body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"` + id + `","result":"created"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		var q map[string]interface{}
		_ = json.Unmarshal(body, &q)
		f.queries = append(f.queries, q)
		resp := map[string]interface{}{"hits": map[string]interface{}{"hits": f.page(r, q)}}
		_ = json.NewEncoder(w).Encode(resp)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}
}

// page returns at most ?size hits after the search_after position. Sort
// values are hit positions.
func (f *fakeCluster) page(r *http.Request, q map[string]interface{}) []map[string]interface{} {
	start := 0
	if after, ok := q["search_after"].([]interface{}); ok && len(after) > 0 {
		if pos, ok := after[0].(float64); ok {
			start = int(pos) + 1
		}
	}
	size := len(f.hits)
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, _ = strconv.Atoi(raw)
	}

	out := []map[string]interface{}{}
	for i := start; i < len(f.hits) && len(out) < size; i++ {
		hit := map[string]interface{}{"sort": []interface{}{i, fmt.Sprintf("doc-%d", i)}}
		for k, v := range f.hits[i] {
			hit[k] = v
		}
		out = append(out, hit)
	}
	return out
}

func newElasticsearchStore(t *testing.T, cluster *fakeCluster) *ElasticsearchStore {
	return newElasticsearchStoreWithPage(t, cluster, 50)
}

func newElasticsearchStoreWithPage(t *testing.T, cluster *fakeCluster, listSize int) *ElasticsearchStore {
	t.Helper()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}}, nil)
	require.NoError(t, err)
	return NewElasticsearchStore(es, "mobility-submissions", listSize, logger.NewTestLogger(t))
}

func TestElasticsearchStore_SaveSubmission(t *testing.T) {
	cluster := &fakeCluster{indexed: map[string][]byte{}}
	s := newElasticsearchStore(t, cluster)

	rec, err := s.SaveSubmission(context.Background(), sampleRecord("Sara.Alaoui@centrale-casablanca.ma"))
	require.NoError(t, err)
	require.Contains(t, cluster.indexed, rec.DatabaseID)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(cluster.indexed[rec.DatabaseID], &doc))
	assert.Equal(t, "sara.alaoui@centrale-casablanca.ma", doc["emailKey"])
	assert.Equal(t, rec.DatabaseID, doc["docId"])
	assert.Equal(t, "Sara.Alaoui@centrale-casablanca.ma", doc["email"])
	assert.NotContains(t, doc, "s5TranscriptsUrl")
}

func TestElasticsearchStore_GetMySubmission(t *testing.T) {
	source := map[string]interface{}{}
	raw, _ := json.Marshal(sampleRecord("sara.alaoui@centrale-casablanca.ma"))
	require.NoError(t, json.Unmarshal(raw, &source))
	source["emailKey"] = "sara.alaoui@centrale-casablanca.ma"

	cluster := &fakeCluster{
		indexed: map[string][]byte{},
		hits:    []map[string]interface{}{{"_id": "doc-1", "_source": source}},
	}
	s := newElasticsearchStore(t, cluster)

	rec, err := s.GetMySubmission(context.Background(), "SARA.ALAOUI@centrale-casablanca.ma")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "doc-1", rec.DatabaseID)
	assert.Equal(t, "MMIS", rec.Choice1.AcademicPath)

	require.Len(t, cluster.queries, 1)
	term := cluster.queries[0]["query"].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "sara.alaoui@centrale-casablanca.ma", term["emailKey"])
}

func TestElasticsearchStore_GetMySubmission_None(t *testing.T) {
	s := newElasticsearchStore(t, &fakeCluster{indexed: map[string][]byte{}})

	rec, err := s.GetMySubmission(context.Background(), "nobody@centrale-casablanca.ma")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestElasticsearchStore_ListAllSubmissions(t *testing.T) {
	cluster := &fakeCluster{
		indexed: map[string][]byte{},
		hits: []map[string]interface{}{
			{"_id": "a", "_source": map[string]interface{}{"email": "a.one@centrale-casablanca.ma", "nationality": "moroccan"}},
			{"_id": "b", "_source": map[string]interface{}{"email": "b.two@centrale-casablanca.ma", "nationality": "other"}},
		},
	}
	s := newElasticsearchStore(t, cluster)

	all, err := s.ListAllSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[1].DatabaseID)
}

func TestElasticsearchStore_ListAllSubmissions_Pages(t *testing.T) {
	cluster := &fakeCluster{indexed: map[string][]byte{}}
	for i := 0; i < 5; i++ {
		cluster.hits = append(cluster.hits, map[string]interface{}{
			"_id":     fmt.Sprintf("doc-%d", i),
			"_source": map[string]interface{}{"email": fmt.Sprintf("student%d@centrale-casablanca.ma", i), "nationality": "moroccan"},
		})
	}
	s := newElasticsearchStoreWithPage(t, cluster, 2)

	all, err := s.ListAllSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, rec := range all {
		assert.Equal(t, fmt.Sprintf("doc-%d", i), rec.DatabaseID)
	}

	require.Len(t, cluster.queries, 3)
	assert.NotContains(t, cluster.queries[0], "search_after")
	assert.Equal(t, []interface{}{float64(1), "doc-1"}, cluster.queries[1]["search_after"])
	assert.Equal(t, []interface{}{float64(3), "doc-3"}, cluster.queries[2]["search_after"])
}

func TestElasticsearchStore_ListAllSubmissions_ExactMultiple(t *testing.T) {
	cluster := &fakeCluster{indexed: map[string][]byte{}}
	for i := 0; i < 4; i++ {
		cluster.hits = append(cluster.hits, map[string]interface{}{
			"_id":     fmt.Sprintf("doc-%d", i),
			"_source": map[string]interface{}{"email": fmt.Sprintf("student%d@centrale-casablanca.ma", i)},
		})
	}
	s := newElasticsearchStoreWithPage(t, cluster, 2)

	all, err := s.ListAllSubmissions(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
	// the third page is empty and ends the listing
	assert.Len(t, cluster.queries, 3)
}
