package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deces-backend/logic/crypt"
	"deces-backend/types"
	"deces-backend/vars"
)

const peopleCSV = "nom,prenom,naissance\n" +
	"Dupont,Jean,01/02/1950\n" +
	"Pompidou,Georges,05/07/1911\n" +
	"Inconnu,Paul,01/01/1900\n" +
	",,\n"

var peopleMapping = map[string]string{"lastName": "nom", "firstName": "prenom", "birthDate": "naissance"}

func newTestBulk(backend *fakeBackend) (*BulkService, *fakeJobStore) {
	store := newFakeJobStore()
	return NewBulkService(store, backend, BulkConfig{Workers: 2, ChunkSize: 2, PBKDF2Iter: 1000}), store
}

func TestBulkService_Lifecycle(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{byLast: map[string][]types.Person{
		"Dupont":   {person("d1", "M", "Jean", "Dupont", "19500201", "Paris", "75")},
		"Pompidou": {person("p1", "M", "Georges", "Pompidou", "19110705", "Montboudif", "15")},
	}}
	svc, store := newTestBulk(backend)
	ctx := context.Background()

	key, status, err := svc.Submit(ctx, []byte(peopleCSV), types.BulkOptions{Mapping: peopleMapping})
	require.NoError(t, err)
	assert.Len(t, key, 64)
	assert.Equal(t, crypt.JobID(key), status.ID)
	assert.Equal(t, vars.JobQueued, status.Status)
	assert.Equal(t, 4, status.Rows)

	svc.Wait()

	status, err = svc.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, vars.JobCompleted, status.Status)
	assert.Equal(t, 100.0, status.Progress)
	assert.Equal(t, []float64{50, 100}, store.progress)
	assert.Equal(t, 2, backend.calls)

	result, _, err := svc.Result(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, ",", result.Sep)
	assert.Equal(t, []string{"nom", "prenom", "naissance"}, result.Header)
	require.Len(t, result.Records, 4)

	require.NotNil(t, result.Records[0].Match)
	assert.Equal(t, "d1", result.Records[0].Match.ID)
	require.NotNil(t, result.Records[1].Match)
	assert.Equal(t, "p1", result.Records[1].Match.ID)
	assert.Nil(t, result.Records[2].Match)
	assert.Nil(t, result.Records[3].Match)
	assert.Equal(t, "Inconnu", result.Records[2].Source["nom"])

	// 已完成的任务删除后取不到
	_, err = svc.Cancel(ctx, key)
	require.NoError(t, err)
	_, err = svc.Status(ctx, key)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestBulkService_DateFormat(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{byLast: map[string][]types.Person{
		"Dupont": {person("d1", "M", "Jean", "Dupont", "19500201", "Paris", "75")},
	}}
	svc, _ := newTestBulk(backend)
	ctx := context.Background()

	data := "nom;prenom;naissance\n" +
		"Dupont;Jean;1950-02-01\n" +
		"Durand;Paul;hier\n"
	opts := types.BulkOptions{
		Sep:         ";",
		Mapping:     peopleMapping,
		ScoreParams: types.ScoreParams{DateFormat: "YYYY-MM-DD"},
	}
	key, _, err := svc.Submit(ctx, []byte(data), opts)
	require.NoError(t, err)
	svc.Wait()

	// 解析不了日期的行不进 msearch
	require.Len(t, backend.queries, 1)
	assert.Equal(t, "01/02/1950", backend.queries[0].BirthDate)

	result, _, err := svc.Result(ctx, key)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.NotNil(t, result.Records[0].Match)
	assert.Equal(t, "d1", result.Records[0].Match.ID)
	assert.Nil(t, result.Records[1].Match)
}

func TestBulkService_WrongKey(t *testing.T) {
	t.Parallel()

	svc, store := newTestBulk(&fakeBackend{})
	ctx := context.Background()

	key, _, err := svc.Submit(ctx, []byte(peopleCSV), types.BulkOptions{Mapping: peopleMapping})
	require.NoError(t, err)
	svc.Wait()

	_, err = svc.Status(ctx, "not-a-key")
	assert.ErrorIs(t, err, ErrInvalidKey)

	other, err := crypt.NewKey()
	require.NoError(t, err)
	_, err = svc.Status(ctx, other)
	assert.ErrorIs(t, err, ErrJobNotFound)

	// 库里的密文用别的 key 解不开
	job, err := store.Get(ctx, crypt.JobID(key))
	require.NoError(t, err)
	_, err = crypt.Decrypt(job.Result, other, 1000)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.NotContains(t, string(job.Result), "Dupont")
}

func TestBulkService_Cancel(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{block: make(chan struct{}), started: make(chan struct{})}
	started := backend.started
	svc, _ := newTestBulk(backend)
	ctx := context.Background()

	key, _, err := svc.Submit(ctx, []byte(peopleCSV), types.BulkOptions{Mapping: peopleMapping})
	require.NoError(t, err)
	<-started

	status, err := svc.Cancel(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, vars.JobCancelled, status.Status)
	svc.Wait()

	status, err = svc.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, vars.JobCancelled, status.Status)

	_, status, err = svc.Result(ctx, key)
	assert.ErrorIs(t, err, ErrJobNotReady)
	assert.Equal(t, vars.JobCancelled, status.Status)
}

func TestBulkService_Failure(t *testing.T) {
	t.Parallel()

	svc, _ := newTestBulk(&fakeBackend{err: errors.New("es down")})
	ctx := context.Background()

	key, _, err := svc.Submit(ctx, []byte(peopleCSV), types.BulkOptions{Mapping: peopleMapping})
	require.NoError(t, err)
	svc.Wait()

	status, err := svc.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, vars.JobFailed, status.Status)
	assert.Contains(t, status.Error, "es down")
}

func TestBulkService_SubmitErrors(t *testing.T) {
	t.Parallel()

	svc, _ := newTestBulk(&fakeBackend{})
	ctx := context.Background()

	_, _, err := svc.Submit(ctx, []byte("nom\n"), types.BulkOptions{})
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, _, err = svc.Submit(ctx, []byte(peopleCSV), types.BulkOptions{ScoreParams: types.ScoreParams{DateFormat: "jj/mm"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, _, err = svc.Submit(ctx, []byte(peopleCSV), types.BulkOptions{Sep: strings.Repeat(";", 2)})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestProgress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 33.33, progress(1, 3))
	assert.Equal(t, 100.0, progress(3, 3))
	assert.Equal(t, 100.0, progress(0, 0))
}
