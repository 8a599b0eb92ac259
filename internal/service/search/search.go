package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/codepilot/coursehub/internal/models"
)

// Service is the full-text course search backed by Elasticsearch. It is
// optional infrastructure: a nil Service (no ES configured) disables the
// endpoint while the DB substring search keeps working.
type Service struct {
	ES    *elasticsearch.Client
	Index string
}

func (s *Service) Enabled() bool {
	return s != nil && s.ES != nil
}

func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Course, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "short_description", "technologies_covered"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: elasticsearch returned %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Course `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	courses := make([]models.Course, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		courses[i] = hit.Source
	}
	return r.Hits.Total.Value, courses, nil
}

// IndexCourse upserts a course document. Called best-effort from the admin
// CRUD handlers.
func (s *Service) IndexCourse(ctx context.Context, course models.Course) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("search: encode course: %w", err)
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(course.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("search: index course: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search: elasticsearch returned %s", res.Status())
	}
	return nil
}

func (s *Service) DeleteCourse(ctx context.Context, id uint) error {
	if !s.Enabled() {
		return nil
	}

	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete course: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: elasticsearch returned %s", res.Status())
	}
	return nil
}
