// Package market searches produce listings in Elasticsearch.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/metrics"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultIndex = "market-listings"

	defaultSize = 20
	maxSize     = 100
)

type Listing struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	PriceINR string `json:"priceINR"`
	Location string `json:"location"`
	Image    string `json:"image"`
}

// StaticListings are served when search is unavailable.
func StaticListings() []Listing {
	return []Listing{
		{ID: 1, Title: "Fresh Tomatoes (50kg)", PriceINR: "₹1,800", Location: "Nashik", Image: "/placeholder.svg"},
		{ID: 2, Title: "Organic Wheat (100kg)", PriceINR: "₹3,200", Location: "Kanpur", Image: "/placeholder.svg"},
	}
}

type Query struct {
	Text     string `json:"text,omitempty"`
	Location string `json:"location,omitempty"`
	From     int    `json:"from,omitempty"`
	Size     int    `json:"size,omitempty"`
}

func (q Query) normalized() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Location = strings.TrimSpace(q.Location)
	if q.From < 0 {
		q.From = 0
	}
	if q.Size < 1 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	return q
}

const (
	SourceSearch   = "search"
	SourceFallback = "fallback"
)

type Result struct {
	Listings []Listing `json:"listings"`
	Total    int64     `json:"total"`
	Source   string    `json:"source"`
}

type Searcher struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearcher(es *elasticsearch.Client, index string, log logger.Logger) *Searcher {
	if index == "" {
		index = DefaultIndex
	}
	return &Searcher{es: es, index: index, logger: log}
}

// Search never fails: a search error is logged and answered from the
// static listings, filtered the same way.
func (s *Searcher) Search(ctx context.Context, q Query) Result {
	q = q.normalized()
	res, err := s.search(ctx, q)
	if err == nil {
		return res
	}
	metrics.MarketSearchFallbacks.Inc()
	s.logger.Warn("market search failed, serving static listings", map[string]interface{}{
		"index": s.index,
		"error": err.Error(),
	})
	listings := filterStatic(q)
	return Result{Listings: listings, Total: int64(len(listings)), Source: SourceFallback}
}

func buildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"title^2", "location"},
			},
		})
	}
	var filter []interface{}
	if q.Location != "" {
		filter = append(filter, map[string]interface{}{
			"match": map[string]interface{}{"location": q.Location},
		})
	}
	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}
	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source Listing `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Searcher) search(ctx context.Context, q Query) (Result, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return Result{}, err
	}
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return Result{}, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return Result{}, fmt.Errorf("search %s: %s", s.index, res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("decode search response: %w", err)
	}
	listings := make([]Listing, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		listings = append(listings, h.Source)
	}
	return Result{Listings: listings, Total: r.Hits.Total.Value, Source: SourceSearch}, nil
}

// Seed indexes the static listings by id. Re-seeding overwrites them.
func (s *Searcher) Seed(ctx context.Context) error {
	for _, l := range StaticListings() {
		body, err := json.Marshal(l)
		if err != nil {
			return err
		}
		req := esapi.IndexRequest{
			Index:      s.index,
			DocumentID: strconv.Itoa(l.ID),
			Body:       bytes.NewReader(body),
		}
		res, err := req.Do(ctx, s.es)
		if err != nil {
			return fmt.Errorf("seed listing %d: %w", l.ID, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("seed listing %d: %s", l.ID, res.Status())
		}
	}
	return nil
}

func filterStatic(q Query) []Listing {
	text := strings.ToLower(q.Text)
	loc := strings.ToLower(q.Location)
	out := []Listing{}
	for _, l := range StaticListings() {
		if text != "" && !strings.Contains(strings.ToLower(l.Title), text) && !strings.Contains(strings.ToLower(l.Location), text) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(l.Location), loc) {
			continue
		}
		out = append(out, l)
	}
	if q.From >= len(out) {
		return []Listing{}
	}
	out = out[q.From:]
	if len(out) > q.Size {
		out = out[:q.Size]
	}
	return out
}
