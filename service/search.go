package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"deces-backend/logic/score"
	"deces-backend/types"
)

var (
	// ErrInvalidQuery 参数校验失败，错误信息里带全部非法字段
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmptyQuery 没有任何检索条件
	ErrEmptyQuery = errors.New("empty query")
)

// PersonSearcher 检索后端
type PersonSearcher interface {
	Search(ctx context.Context, q types.Query) (int, []types.Person, error)
}

// PersonStore 记录写入
type PersonStore interface {
	Store(ctx context.Context, persons []types.Person) ([]string, error)
}

type SearchService struct {
	searcher PersonSearcher
	store    PersonStore
}

// 构造函数：依赖注入
func NewSearchService(searcher PersonSearcher, store PersonStore) *SearchService {
	return &SearchService{searcher: searcher, store: store}
}

// Search 校验 -> 检索 -> 打分
func (s *SearchService) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	startTime := time.Now()

	// 1. 归一化并校验
	q := req.Query
	q.Normalize()
	if err := validate(q, req.ScoreParams); err != nil {
		return nil, err
	}
	if q.IsEmpty() {
		return nil, ErrEmptyQuery
	}

	// 2. 检索候选；检索语句只认 DD/MM/YYYY，打分仍用原始日期加 dateFormat
	sq, err := q.SearchDates(req.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	total, candidates, err := s.searcher.Search(ctx, sq)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	// 3. 打分排序
	persons := score.ScoreResults(q, candidates, req.ScoreParams)
	log.Printf(">>> [Search] %d candidates -> %d scored in %v", len(candidates), len(persons), time.Since(startTime))

	return &types.SearchResponse{Total: total, Persons: persons}, nil
}

// Score 调用方自带候选，只跑打分
func (s *SearchService) Score(ctx context.Context, req types.ScoreRequest) ([]types.Person, error) {
	q := req.Query
	q.Normalize()
	if err := validate(q, req.Params); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return score.ScoreResults(q, req.Candidates, req.Params), nil
}

// Index 批量写入记录
func (s *SearchService) Index(ctx context.Context, persons []types.Person) ([]string, error) {
	if len(persons) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInvalidQuery)
	}
	if len(persons) > types.MaxSize {
		return nil, fmt.Errorf("%w: too many records (%d > %d)", ErrInvalidQuery, len(persons), types.MaxSize)
	}
	ids, err := s.store.Store(ctx, persons)
	if err != nil {
		return nil, fmt.Errorf("index records: %w", err)
	}
	return ids, nil
}

func validate(q types.Query, params types.ScoreParams) error {
	if err := errors.Join(q.Validate(params.DateFormat), params.Validate()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}
