package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"deces-backend/logic/crypt"
	"deces-backend/logic/csvio"
	"deces-backend/logic/datefmt"
	"deces-backend/logic/score"
	"deces-backend/storage/postgres"
	"deces-backend/types"
	"deces-backend/vars"
)

var (
	ErrJobNotFound = postgres.ErrJobNotFound
	// ErrJobNotReady 任务还没完成（或失败/取消），没有结果可取
	ErrJobNotReady = errors.New("job not ready")
	ErrInvalidKey  = crypt.ErrInvalidKey
	ErrEmptyFile   = errors.New("no usable rows in file")
)

// JobStore 批量任务的持久化
type JobStore interface {
	Create(ctx context.Context, job *postgres.BulkJob) error
	Get(ctx context.Context, jobID string) (*postgres.BulkJob, error)
	MarkActive(ctx context.Context, jobID string, rows int) error
	UpdateProgress(ctx context.Context, jobID string, processed int, progress float64) error
	Complete(ctx context.Context, jobID string, result []byte) error
	Fail(ctx context.Context, jobID string, cause error) error
	Cancel(ctx context.Context, jobID string) error
	Delete(ctx context.Context, jobID string) error
}

// MultiSearcher 一次查多条的检索后端
type MultiSearcher interface {
	MultiSearch(ctx context.Context, queries []types.Query) ([][]types.Person, error)
}

// BulkConfig 批量任务参数
type BulkConfig struct {
	Workers    int // 每个分块内并发打分的行数
	ChunkSize  int
	PBKDF2Iter int
}

func DefaultBulkConfig() BulkConfig {
	return BulkConfig{
		Workers:    vars.BULK_WORKERS,
		ChunkSize:  vars.BULK_CHUNK_SIZE,
		PBKDF2Iter: vars.PBKDF2_ITER,
	}
}

type BulkService struct {
	store    JobStore
	searcher MultiSearcher
	cfg      BulkConfig

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // 运行中的任务
	wg      sync.WaitGroup
}

func NewBulkService(store JobStore, searcher MultiSearcher, cfg BulkConfig) *BulkService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 20
	}
	if cfg.PBKDF2Iter <= 0 {
		cfg.PBKDF2Iter = 4096
	}
	return &BulkService{
		store:    store,
		searcher: searcher,
		cfg:      cfg,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Submit 解析 CSV 并创建任务，后台异步处理
// 返回的 key 只交给客户端，服务端只保存 sha256(key)
func (s *BulkService) Submit(ctx context.Context, data []byte, opts types.BulkOptions) (string, *types.JobStatus, error) {
	// 1. 参数
	opts = opts.WithDefaults(s.cfg.ChunkSize)
	if err := opts.ScoreParams.Validate(); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if opts.DateFormat != "" {
		if _, err := datefmt.Layout(opts.DateFormat); err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}
	if opts.Size > types.MaxSize {
		return "", nil, fmt.Errorf("%w: size %d > %d", ErrInvalidQuery, opts.Size, types.MaxSize)
	}

	// 2. 解析
	header, records, err := csvio.ParseRows(data, opts)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if len(records) == 0 {
		return "", nil, ErrEmptyFile
	}

	// 3. 建任务
	key, err := crypt.NewKey()
	if err != nil {
		return "", nil, err
	}
	job := &postgres.BulkJob{
		JobID:  crypt.JobID(key),
		Status: vars.JobQueued,
		Rows:   len(records),
		Sep:    opts.Sep,
		Header: header,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return "", nil, fmt.Errorf("create job: %w", err)
	}

	// 4. 后台处理；任务生命周期不跟随请求
	jobCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[job.JobID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(job.JobID)
		s.run(jobCtx, job.JobID, key, header, records, opts)
	}()

	log.Printf(">>> [Bulk] job %s queued, %d rows", short(job.JobID), len(records))
	return key, jobStatus(job), nil
}

func (s *BulkService) release(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}
}

func (s *BulkService) run(ctx context.Context, jobID, key string, header []string, records []types.BulkRecord, opts types.BulkOptions) {
	startTime := time.Now()
	// 状态写入不受取消影响
	storeCtx := context.WithoutCancel(ctx)

	if err := s.store.MarkActive(storeCtx, jobID, len(records)); err != nil {
		log.Printf(">>> [Bulk] job %s mark active failed: %v", short(jobID), err)
		return
	}

	err := s.process(ctx, storeCtx, jobID, records, opts)
	switch {
	case ctx.Err() != nil:
		if err := s.store.Cancel(storeCtx, jobID); err != nil {
			log.Printf(">>> [Bulk] job %s cancel failed: %v", short(jobID), err)
		}
		log.Printf(">>> [Bulk] job %s cancelled", short(jobID))
		return
	case err != nil:
		s.fail(storeCtx, jobID, err)
		return
	}

	// 结果序列化后加密落库
	plain, err := json.Marshal(types.BulkResult{Header: header, Records: records})
	if err != nil {
		s.fail(storeCtx, jobID, fmt.Errorf("encode result: %w", err))
		return
	}
	sealed, err := crypt.Encrypt(plain, key, s.cfg.PBKDF2Iter)
	if err != nil {
		s.fail(storeCtx, jobID, fmt.Errorf("encrypt result: %w", err))
		return
	}
	if err := s.store.Complete(storeCtx, jobID, sealed); err != nil {
		log.Printf(">>> [Bulk] job %s complete failed: %v", short(jobID), err)
		return
	}
	log.Printf(">>> [Bulk] job %s done, %d rows in %v", short(jobID), len(records), time.Since(startTime))
}

func (s *BulkService) fail(ctx context.Context, jobID string, cause error) {
	log.Printf(">>> [Bulk] job %s failed: %v", short(jobID), cause)
	if err := s.store.Fail(ctx, jobID, cause); err != nil {
		log.Printf(">>> [Bulk] job %s mark failed: %v", short(jobID), err)
	}
}

// process 分块串行：每块一次 msearch，块内各行并发打分，记录最优候选
func (s *BulkService) process(ctx, storeCtx context.Context, jobID string, records []types.BulkRecord, opts types.BulkOptions) error {
	total := len(records)
	for start := 0; start < total; start += opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+opts.ChunkSize, total)
		chunk := records[start:end]

		// 1. 空行和日期解析不了的行不查
		var queries, searches []types.Query
		var rows []int
		for i := range chunk {
			if chunk[i].Query.IsEmpty() {
				continue
			}
			sq, err := chunk[i].Query.SearchDates(opts.DateFormat)
			if err != nil {
				log.Printf(">>> [Bulk] job %s row %d skipped: %v", short(jobID), start+i, err)
				continue
			}
			queries = append(queries, chunk[i].Query)
			searches = append(searches, sq)
			rows = append(rows, i)
		}

		// 2. 检索
		hits, err := s.searcher.MultiSearch(ctx, searches)
		if err != nil {
			return fmt.Errorf("msearch rows %d-%d: %w", start, end-1, err)
		}
		if len(hits) != len(queries) {
			return fmt.Errorf("msearch rows %d-%d: got %d results for %d queries", start, end-1, len(hits), len(queries))
		}

		// 3. 并发打分
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for j, row := range rows {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				chunk[row].Match = bestMatch(queries[j], hits[j], opts.ScoreParams)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// 4. 进度
		if err := s.store.UpdateProgress(storeCtx, jobID, end, progress(end, total)); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
	}
	return nil
}

func bestMatch(q types.Query, candidates []types.Person, params types.ScoreParams) *types.Person {
	persons := score.ScoreResults(q, candidates, params)
	if len(persons) == 0 {
		return nil
	}
	best := persons[0]
	return &best
}

func progress(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return math.Round(10000*float64(done)/float64(total)) / 100
}

// Status 按 key 查任务状态
func (s *BulkService) Status(ctx context.Context, key string) (*types.JobStatus, error) {
	job, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return jobStatus(job), nil
}

// Result 解密结果；未完成时返回 ErrJobNotReady 和当前状态
func (s *BulkService) Result(ctx context.Context, key string) (*types.BulkResult, *types.JobStatus, error) {
	job, err := s.lookup(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	status := jobStatus(job)
	if job.Status != vars.JobCompleted {
		return nil, status, ErrJobNotReady
	}

	plain, err := crypt.Decrypt(job.Result, key, s.cfg.PBKDF2Iter)
	if err != nil {
		return nil, status, err
	}
	var result types.BulkResult
	if err := json.Unmarshal(plain, &result); err != nil {
		return nil, status, fmt.Errorf("decode result: %w", err)
	}
	result.Sep = job.Sep
	return &result, status, nil
}

// Cancel 运行中的任务发取消信号；已结束的任务连同结果一起删掉
func (s *BulkService) Cancel(ctx context.Context, key string) (*types.JobStatus, error) {
	job, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	status := jobStatus(job)

	s.mu.Lock()
	cancel, running := s.cancels[job.JobID]
	s.mu.Unlock()

	switch {
	case running:
		cancel()
		status.Status = vars.JobCancelled
	case job.IsFinished():
		if err := s.store.Delete(ctx, job.JobID); err != nil {
			return nil, fmt.Errorf("delete job: %w", err)
		}
	default:
		// 进程重启后遗留的排队/处理中任务
		if err := s.store.Cancel(ctx, job.JobID); err != nil {
			return nil, fmt.Errorf("cancel job: %w", err)
		}
		status.Status = vars.JobCancelled
	}
	log.Printf(">>> [Bulk] job %s cancel requested (%s)", short(job.JobID), job.Status)
	return status, nil
}

// Wait 等所有后台任务退出
func (s *BulkService) Wait() {
	s.wg.Wait()
}

// Shutdown 取消所有运行中的任务并等待退出
func (s *BulkService) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *BulkService) lookup(ctx context.Context, key string) (*postgres.BulkJob, error) {
	if b, err := hex.DecodeString(key); err != nil || len(b) != 32 {
		return nil, ErrInvalidKey
	}
	return s.store.Get(ctx, crypt.JobID(key))
}

func jobStatus(job *postgres.BulkJob) *types.JobStatus {
	return &types.JobStatus{
		ID:       job.JobID,
		Status:   job.Status,
		Rows:     job.Rows,
		Progress: job.Progress,
		Error:    job.ErrorMessage,
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
