package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"deces-backend/types"
)

// PersonRetriever 候选检索
type PersonRetriever struct {
	client *elasticsearch.Client
	index  string
}

func NewPersonRetriever(client *elasticsearch.Client, index string) *PersonRetriever {
	return &PersonRetriever{client: client, index: index}
}

type searchHit struct {
	ID     string    `json:"_id"`
	Score  float64   `json:"_score"`
	Source personDoc `json:"_source"`
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
	Error  json.RawMessage `json:"error,omitempty"`
	Status int             `json:"status,omitempty"`
}

type msearchResult struct {
	Responses []searchResult `json:"responses"`
}

func (r searchResult) persons() []types.Person {
	persons := make([]types.Person, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p := hit.Source.person(hit.Score)
		if p.ID == "" {
			p.ID = hit.ID
		}
		persons = append(persons, p)
	}
	return persons
}

// Search 单条检索，返回命中总数和候选 (Score 为 ES 原始 _score)
func (r *PersonRetriever) Search(ctx context.Context, q types.Query) (int, []types.Person, error) {
	// 1. 构建并序列化查询
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(BuildPersonQuery(q)); err != nil {
		return 0, nil, fmt.Errorf("error encoding query: %w", err)
	}
	log.Printf(">>> [ES] Query: %s", strings.TrimSpace(buf.String()))

	// 2. 执行搜索
	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  strings.NewReader(buf.String()),
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return 0, nil, fmt.Errorf("error getting response: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("error response: %s", res.String())
	}

	// 3. 解析结果
	var result searchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return 0, nil, fmt.Errorf("error parsing response body: %w", err)
	}

	persons := result.persons()
	log.Printf(">>> [ES] Retrieved %d/%d results", len(persons), result.Hits.Total.Value)
	return result.Hits.Total.Value, persons, nil
}

// MultiSearch 一次 msearch 查多条，结果与 queries 一一对应
// 单条子查询出错时返回 error，由调用方决定整批失败
func (r *PersonRetriever) MultiSearch(ctx context.Context, queries []types.Query) ([][]types.Person, error) {
	if len(queries) == 0 {
		return nil, nil
	}

	// 1. 拼 NDJSON：每条一行 header 一行 body
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, q := range queries {
		if err := enc.Encode(map[string]interface{}{"index": r.index}); err != nil {
			return nil, fmt.Errorf("error encoding msearch header: %w", err)
		}
		if err := enc.Encode(BuildPersonQuery(q)); err != nil {
			return nil, fmt.Errorf("error encoding query: %w", err)
		}
	}

	// 2. 执行
	req := esapi.MsearchRequest{
		Index: []string{r.index},
		Body:  &body,
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("error getting response: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error response: %s", res.String())
	}

	return decodeMultiSearch(res.Body, len(queries))
}

func decodeMultiSearch(r io.Reader, expected int) ([][]types.Person, error) {
	var result msearchResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing response body: %w", err)
	}
	if len(result.Responses) != expected {
		return nil, fmt.Errorf("msearch returned %d responses for %d queries", len(result.Responses), expected)
	}

	out := make([][]types.Person, len(result.Responses))
	for i, resp := range result.Responses {
		if len(resp.Error) > 0 {
			return nil, fmt.Errorf("msearch query %d failed: %s", i, string(resp.Error))
		}
		out[i] = resp.persons()
	}
	log.Printf(">>> [ES] msearch %d queries", expected)
	return out, nil
}
