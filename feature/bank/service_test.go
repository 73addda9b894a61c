package bank_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"storagebox/core/kv"
	"storagebox/core/kv/memory"
	"storagebox/core/stats"
	"storagebox/core/storage/mocks"
	"storagebox/feature/bank"
	"storagebox/feature/bank/ledger"
	"storagebox/feature/bank/pool"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	items   *memory.Table
	dedup   *memory.Table
	client  *mocks.Client
	service *bank.Service
}

func newEnv(t *testing.T, chunk int, itemOpts ...memory.Option) *testEnv {
	t.Helper()
	items := memory.NewTable("item_bank", itemOpts...)
	dedup := memory.NewTable("deduplication")
	p := pool.New(items, pool.Options{MaxItemSize: 16, MaxBatchSize: 3, PageSize: 4, MaxBatchRetries: 1}, zap.NewNop(),
		pool.WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
	rec := stats.NewMemory()
	r := bank.NewResolver(p, ledger.New(dedup), zap.NewNop(), bank.WithStats(rec))
	client := new(mocks.Client)
	return &testEnv{
		items:   items,
		dedup:   dedup,
		client:  client,
		service: bank.NewService(r, client, "storagebox", chunk, rec, zap.NewNop()),
	}
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestService_AddItems(t *testing.T) {
	env := newEnv(t, 0)
	n, err := env.service.AddItems(context.Background(), []string{" tok", "tok ", "  ", "tok"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.ElementsMatch(t, []string{" tok", "tok ", "  ", "tok"}, env.items.Keys())

	n, err = env.service.AddItems(context.Background(), []string{"a", "", "b"})
	assert.ErrorIs(t, err, pool.ErrInvalidItem)
	assert.Equal(t, 0, n)
	assert.Equal(t, 4, env.items.Len(), "nothing written when one item is invalid")

	_, err = env.service.AddItems(context.Background(), []string{"way-too-long-item-value"})
	assert.ErrorIs(t, err, pool.ErrItemTooLarge)
}

func TestService_ResolveKeepsIDVerbatim(t *testing.T) {
	env := newEnv(t, 0)
	_, err := env.service.AddItems(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	padded, err := env.service.Resolve(context.Background(), " req1")
	require.NoError(t, err)
	plain, err := env.service.Resolve(context.Background(), "req1")
	require.NoError(t, err)
	assert.NotEqual(t, padded.Item, plain.Item)
	assert.Equal(t, bank.OutcomeBound, plain.Outcome)

	_, ok, err := env.dedup.Get(context.Background(), " req1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_ImportObject(t *testing.T) {
	env := newEnv(t, 2)
	env.client.On("GetObject", mock.Anything, "storagebox", "lists/codes.txt", mock.Anything).
		Return(body("# batch 7\ncode-1\r\ncode-2\n\ncode-3 \n"), nil)

	n, err := env.service.ImportObject(context.Background(), "/lists/codes.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"code-1", "code-2", "code-3 "}, env.items.Keys())
	env.client.AssertExpectations(t)
}

func TestService_ImportObject_StopsOnInvalidLine(t *testing.T) {
	env := newEnv(t, 2)
	env.client.On("GetObject", mock.Anything, "storagebox", "codes.txt", mock.Anything).
		Return(body("ok-1\nok-2\nthis-line-is-far-too-long\nok-3\n"), nil)

	n, err := env.service.ImportObject(context.Background(), "codes.txt")
	assert.ErrorIs(t, err, pool.ErrItemTooLarge)
	assert.Equal(t, 2, n, "first chunk was written before the bad line")
	assert.Equal(t, []string{"ok-1", "ok-2"}, env.items.Keys())
}

func TestService_ImportObject_Errors(t *testing.T) {
	env := newEnv(t, 0)
	_, err := env.service.ImportObject(context.Background(), "")
	assert.ErrorIs(t, err, bank.ErrInvalidRequest)

	env.client.On("GetObject", mock.Anything, "storagebox", "missing.txt", mock.Anything).
		Return(nil, errors.New("NoSuchKey"))
	_, err = env.service.ImportObject(context.Background(), "missing.txt")
	assert.Error(t, err)

	noStorage := bank.NewService(env.service.Resolver(), nil, "", 0, nil, nil)
	_, err = noStorage.ImportObject(context.Background(), "codes.txt")
	assert.ErrorIs(t, err, bank.ErrStorageDisabled)
	_, err = noStorage.ExportPool(context.Background(), "out.txt")
	assert.ErrorIs(t, err, bank.ErrStorageDisabled)
	_, err = noStorage.ListImports(context.Background(), "")
	assert.ErrorIs(t, err, bank.ErrStorageDisabled)
}

func TestService_ImportObject_PartialFailure(t *testing.T) {
	// Every batch write leaves its last record unprocessed.
	fault := memory.WithBatchFault(func(_ int, recs []kv.Record) []kv.Record {
		return recs[len(recs)-1:]
	})
	env := newEnv(t, 10, fault)
	env.client.On("GetObject", mock.Anything, "storagebox", "codes.txt", mock.Anything).
		Return(body("a\nb\n"), nil)

	n, err := env.service.ImportObject(context.Background(), "codes.txt")
	var partial *pool.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{"b"}, partial.Unprocessed)
}

func TestService_ExportPool(t *testing.T) {
	env := newEnv(t, 0)
	_, err := env.service.AddItems(context.Background(), []string{"x", "y", "z", "w", "v"})
	require.NoError(t, err)

	var uploaded []byte
	env.client.On("PutObject", mock.Anything, "storagebox", "exports/pool.txt", mock.Anything, int64(10), mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	n, err := env.service.ExportPool(context.Background(), "exports/pool.txt")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "v\nw\nx\ny\nz\n", string(uploaded))
	env.client.AssertExpectations(t)
}

func TestService_ListImports(t *testing.T) {
	env := newEnv(t, 0)
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "lists/"}
	ch <- minio.ObjectInfo{Key: "lists/a.txt"}
	ch <- minio.ObjectInfo{Key: "lists/b.txt"}
	close(ch)
	env.client.On("ListObjects", mock.Anything, "storagebox", minio.ListObjectsOptions{Prefix: "lists/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	names, err := env.service.ListImports(context.Background(), "lists/")
	require.NoError(t, err)
	assert.Equal(t, []string{"lists/a.txt", "lists/b.txt"}, names)
}

func TestService_Stats(t *testing.T) {
	env := newEnv(t, 0)
	_, err := env.service.AddItems(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	_, err = env.service.Resolve(context.Background(), "req1")
	require.NoError(t, err)
	_, err = env.service.Resolve(context.Background(), "req1")
	require.NoError(t, err)

	report, err := env.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.PoolSize)
	assert.Equal(t, map[string]int64{"bound": 1, "replayed": 1}, report.Outcomes)
}
