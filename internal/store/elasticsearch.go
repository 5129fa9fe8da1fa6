package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

// emailKeyField is an extra keyword field holding the lower-cased email.
// docIDField repeats the document id so listings can page on it. Neither
// is part of the decoded record.
const (
	emailKeyField = "emailKey"
	docIDField    = "docId"
)

const indexMapping = `{
	"mappings": {
		"dynamic": false,
		"properties": {
			"emailKey":  {"type": "keyword"},
			"docId":     {"type": "keyword"},
			"email":     {"type": "keyword"},
			"createdAt": {"type": "date"},
			"choice1":   {"properties": {"schoolName": {"type": "keyword"}}},
			"choice2":   {"properties": {"schoolName": {"type": "keyword"}}},
			"nationality": {"type": "keyword"}
		}
	}
}`

// ElasticsearchStore keeps submissions as documents of one index.
type ElasticsearchStore struct {
	es       *elasticsearch.Client
	index    string
	listSize int
	logger   logger.Logger
}

func NewElasticsearchStore(es *elasticsearch.Client, index string, listSize int, log logger.Logger) *ElasticsearchStore {
	if listSize <= 0 {
		listSize = 1000
	}
	return &ElasticsearchStore{
		es:       es,
		index:    index,
		listSize: listSize,
		logger:   log.WithFields(map[string]interface{}{"component": "elasticsearch-store", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping unless it exists.
func (s *ElasticsearchStore) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}
	return nil
}

func (s *ElasticsearchStore) SaveSubmission(ctx context.Context, data models.SubmissionData) (*models.SubmissionMetaDb, error) {
	if err := ValidateRecord(data); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}
	id := uuid.New().String()
	doc[emailKeyField] = strings.ToLower(data.Email)
	doc[docIDField] = id
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    "wait_for",
	}.Do(ctx, s.es)
	if err != nil {
		return nil, fmt.Errorf("failed to index submission: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("failed to index submission: %s", res.String())
	}

	s.logger.Info("submission indexed", map[string]interface{}{"databaseId": id, "email": data.Email})
	return &models.SubmissionMetaDb{SubmissionData: data, DatabaseID: id}, nil
}

func (s *ElasticsearchStore) GetMySubmission(ctx context.Context, email string) (*models.SubmissionMetaDb, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{emailKeyField: strings.ToLower(email)},
		},
		"sort": []interface{}{
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}
	page, err := s.search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(page.records) == 0 {
		return nil, nil
	}
	return &page.records[0], nil
}

// ListAllSubmissions pages through the index listSize hits at a time with
// search_after until a short page comes back.
func (s *ElasticsearchStore) ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error) {
	var (
		all   []models.SubmissionMetaDb
		after []interface{}
	)
	for {
		query := map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort": []interface{}{
				map[string]interface{}{"createdAt": map[string]interface{}{"order": "asc"}},
				map[string]interface{}{docIDField: map[string]interface{}{"order": "asc", "missing": "_last"}},
			},
		}
		if after != nil {
			query["search_after"] = after
		}

		page, err := s.search(ctx, query, s.listSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.records...)
		if page.hits < s.listSize {
			return all, nil
		}
		if len(page.lastSort) == 0 {
			return nil, fmt.Errorf("failed to page submissions: last hit carries no sort values")
		}
		after = page.lastSort
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
			Sort   []interface{}   `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// searchPage is one decoded response. hits counts raw hits, including
// documents skipped as unreadable.
type searchPage struct {
	records  []models.SubmissionMetaDb
	hits     int
	lastSort []interface{}
}

func (s *ElasticsearchStore) search(ctx context.Context, query map[string]interface{}, size int) (*searchPage, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	ignoreUnavailable := true
	res, err := esapi.SearchRequest{
		Index:             []string{s.index},
		Body:              bytes.NewReader(body),
		Size:              &size,
		IgnoreUnavailable: &ignoreUnavailable,
	}.Do(ctx, s.es)
	if err != nil {
		return nil, fmt.Errorf("failed to search submissions: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("failed to search submissions: %s", res.String())
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	var parsed searchResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := parsed.Hits.Hits
	page := &searchPage{
		records: make([]models.SubmissionMetaDb, 0, len(hits)),
		hits:    len(hits),
	}
	if len(hits) > 0 {
		page.lastSort = hits[len(hits)-1].Sort
	}
	for _, hit := range hits {
		rec, err := decodeRecord(hit.Source, hit.ID)
		if err != nil {
			s.logger.Warn("skipping unreadable submission", map[string]interface{}{"databaseId": hit.ID, "error": err})
			continue
		}
		page.records = append(page.records, *rec)
	}
	return page, nil
}
