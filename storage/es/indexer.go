package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"

	"deces-backend/types"
)

type PersonIndexer struct {
	client *elasticsearch.Client
	index  string
}

// GetClient 返回 ES 客户端（用于检索）
func (e *PersonIndexer) GetClient() *elasticsearch.Client {
	return e.client
}

// NewPersonIndexer 初始化 ES 客户端并确保索引存在
func NewPersonIndexer(addresses []string, indexName string) (*PersonIndexer, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}

	indexer := &PersonIndexer{client: es, index: indexName}

	if err := indexer.initMapping(context.Background()); err != nil {
		return nil, err
	}

	return indexer, nil
}

// 日期按 YYYYMMDD 存 keyword，区间查询走字典序
const personMapping = `
{
  "settings": {
	"number_of_shards": 1,
	"number_of_replicas": 0,
	"analysis": {
	  "analyzer": {
		"folding": {
		  "tokenizer": "standard",
		  "filter": ["lowercase", "asciifolding"]
		}
	  }
	}
  },
  "mappings": {
	"properties": {
	  "id":     { "type": "keyword" },
	  "source": { "type": "keyword" },
	  "sex":    { "type": "keyword" },
	  "name": {
		"properties": {
		  "first": { "type": "text", "analyzer": "folding", "fields": { "keyword": { "type": "keyword" } } },
		  "last":  { "type": "text", "analyzer": "folding", "fields": { "keyword": { "type": "keyword" } } }
		}
	  },
	  "birth": {
		"properties": {
		  "date": { "type": "keyword" },
		  "location": {
			"properties": {
			  "city":           { "type": "text", "analyzer": "folding" },
			  "cityCode":       { "type": "keyword" },
			  "departmentCode": { "type": "keyword" },
			  "country":        { "type": "text", "analyzer": "folding" },
			  "countryCode":    { "type": "keyword" },
			  "latitude":       { "type": "double" },
			  "longitude":      { "type": "double" }
			}
		  }
		}
	  },
	  "death": {
		"properties": {
		  "date":          { "type": "keyword" },
		  "certificateId": { "type": "keyword" },
		  "age":           { "type": "integer" },
		  "location": {
			"properties": {
			  "city":           { "type": "text", "analyzer": "folding" },
			  "cityCode":       { "type": "keyword" },
			  "departmentCode": { "type": "keyword" },
			  "country":        { "type": "text", "analyzer": "folding" },
			  "countryCode":    { "type": "keyword" },
			  "latitude":       { "type": "double" },
			  "longitude":      { "type": "double" }
			}
		  }
		}
	  },
	  "birthGeoPoint": { "type": "geo_point" },
	  "deathGeoPoint": { "type": "geo_point" }
	}
  }
}`

func (e *PersonIndexer) initMapping(ctx context.Context) error {
	// 1. 检查索引是否存在
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil // 已存在，跳过
	}

	// 2. 创建索引
	log.Printf(">>> [ES] Creating index %s ...", e.index)
	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(personMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index response error: %s", res.String())
	}
	return nil
}

// personDoc 索引里的文档，比 types.Person 多两个 geo_point 字段，不存打分
type personDoc struct {
	ID            string      `json:"id"`
	Source        string      `json:"source,omitempty"`
	Sex           string      `json:"sex,omitempty"`
	Name          types.Name  `json:"name"`
	Birth         types.Birth `json:"birth"`
	Death         types.Death `json:"death"`
	BirthGeoPoint []float64   `json:"birthGeoPoint,omitempty"`
	DeathGeoPoint []float64   `json:"deathGeoPoint,omitempty"`
}

func newPersonDoc(p types.Person) personDoc {
	return personDoc{
		ID:            p.ID,
		Source:        p.Source,
		Sex:           p.Sex,
		Name:          p.Name,
		Birth:         p.Birth,
		Death:         p.Death,
		BirthGeoPoint: geoPoint(p.Birth.Location),
		DeathGeoPoint: geoPoint(p.Death.Location),
	}
}

func (d personDoc) person(score float64) types.Person {
	return types.Person{
		ID:     d.ID,
		Score:  score,
		Source: d.Source,
		Sex:    d.Sex,
		Name:   d.Name,
		Birth:  d.Birth,
		Death:  d.Death,
	}
}

// geoPoint ES 数组形式为 [lon, lat]
func geoPoint(l types.Location) []float64 {
	if l.Latitude == nil || l.Longitude == nil {
		return nil
	}
	return []float64{*l.Longitude, *l.Latitude}
}

// Store 批量写入，缺 ID 的记录补 uuid；返回写入后的 ID 列表
func (e *PersonIndexer) Store(ctx context.Context, persons []types.Person) ([]string, error) {
	var failed atomic.Int64
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		Client:        e.client,
		FlushInterval: time.Second,
		OnError: func(ctx context.Context, err error) {
			log.Printf(">>> [ES] bulk indexer error: %v", err)
		},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(persons))
	for _, p := range persons {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		data, err := json.Marshal(newPersonDoc(p))
		if err != nil {
			return nil, fmt.Errorf("encode person %s: %w", p.ID, err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: p.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					log.Printf(">>> [ES] index %s failed: %v", item.DocumentID, err)
					return
				}
				log.Printf(">>> [ES] index %s failed: %s: %s", item.DocumentID, res.Error.Type, res.Error.Reason)
			},
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}

	if err := bi.Close(ctx); err != nil {
		return nil, err
	}
	if n := failed.Load(); n > 0 {
		return nil, fmt.Errorf("bulk index: %d of %d documents failed", n, len(persons))
	}
	log.Printf(">>> [ES] Indexed %d persons into %s", len(ids), e.index)
	return ids, nil
}

// DeleteByID 按 ID 删除单条记录
func (e *PersonIndexer) DeleteByID(ctx context.Context, id string) error {
	res, err := e.client.Delete(
		e.index,
		id,
		e.client.Delete.WithContext(ctx),
		e.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("ES delete request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES delete response error: %s", res.String())
	}

	log.Printf(">>> [ES] 已删除 ID=%s", id)
	return nil
}
