package service

import (
	"context"
	"sync"
	"time"

	"deces-backend/storage/postgres"
	"deces-backend/types"
	"deces-backend/vars"
)

type fakeJobStore struct {
	mu       sync.Mutex
	jobs     map[string]*postgres.BulkJob
	progress []float64
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]*postgres.BulkJob)}
}

func (f *fakeJobStore) Create(ctx context.Context, job *postgres.BulkJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *job
	f.jobs[job.JobID] = &c
	return nil
}

func (f *fakeJobStore) Get(ctx context.Context, jobID string) (*postgres.BulkJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, postgres.ErrJobNotFound
	}
	c := *job
	return &c, nil
}

func (f *fakeJobStore) with(jobID string, fn func(*postgres.BulkJob)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return postgres.ErrJobNotFound
	}
	fn(job)
	return nil
}

func (f *fakeJobStore) MarkActive(ctx context.Context, jobID string, rows int) error {
	return f.with(jobID, func(j *postgres.BulkJob) {
		j.Status = vars.JobActive
		j.Rows = rows
	})
}

func (f *fakeJobStore) UpdateProgress(ctx context.Context, jobID string, processed int, progress float64) error {
	return f.with(jobID, func(j *postgres.BulkJob) {
		j.Processed = processed
		j.Progress = progress
		f.progress = append(f.progress, progress)
	})
}

func (f *fakeJobStore) Complete(ctx context.Context, jobID string, result []byte) error {
	return f.with(jobID, func(j *postgres.BulkJob) {
		now := time.Now()
		j.Status = vars.JobCompleted
		j.Progress = 100
		j.Result = result
		j.CompletedAt = &now
	})
}

func (f *fakeJobStore) Fail(ctx context.Context, jobID string, cause error) error {
	return f.with(jobID, func(j *postgres.BulkJob) {
		j.Status = vars.JobFailed
		j.ErrorMessage = cause.Error()
	})
}

func (f *fakeJobStore) Cancel(ctx context.Context, jobID string) error {
	return f.with(jobID, func(j *postgres.BulkJob) {
		j.Status = vars.JobCancelled
	})
}

func (f *fakeJobStore) Delete(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, jobID)
	return nil
}

// fakeBackend 按姓氏返回预置候选
type fakeBackend struct {
	mu      sync.Mutex
	byLast  map[string][]types.Person
	calls   int
	queries []types.Query // 收到的检索条件
	err     error
	stored  []types.Person
	block   chan struct{} // 非空时 MultiSearch 阻塞到 ctx 取消
	started chan struct{}
}

func (f *fakeBackend) Search(ctx context.Context, q types.Query) (int, []types.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return 0, nil, f.err
	}
	hits := f.byLast[q.LastName]
	return len(hits), hits, nil
}

func (f *fakeBackend) MultiSearch(ctx context.Context, queries []types.Query) ([][]types.Person, error) {
	if f.block != nil {
		f.mu.Lock()
		if f.started != nil {
			close(f.started)
			f.started = nil
		}
		f.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.block:
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, queries...)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]types.Person, len(queries))
	for i, q := range queries {
		out[i] = f.byLast[q.LastName]
	}
	return out, nil
}

func (f *fakeBackend) Store(ctx context.Context, persons []types.Person) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, len(persons))
	for i, p := range persons {
		ids[i] = p.ID
		f.stored = append(f.stored, p)
	}
	return ids, nil
}

func person(id, sex, first, last, birthDate, city, dep string) types.Person {
	return types.Person{
		ID:    id,
		Score: 10,
		Sex:   sex,
		Name:  types.Name{First: types.Scalar(first), Last: types.Scalar(last)},
		Birth: types.Birth{Date: birthDate, Location: types.Location{
			City:           types.Scalar(city),
			DepartmentCode: dep,
			Country:        types.Scalar("France"),
			CountryCode:    "FRA",
		}},
	}
}
