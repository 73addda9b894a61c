package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"storagebox/core/backend"
	"storagebox/core/kv/memory"
	"storagebox/core/storage"
	"storagebox/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, tables *backend.Tables, client storage.Client) *fiber.App {
	app := fiber.New()
	svc := NewService(tables, nil, client, storage.Config{Bucket: "test-bucket"}, zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleIntegrityCheck(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	ch := make(chan minio.ObjectInfo)
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))
	app := setupTestApp(t, seedTables(t), mockClient)

	status, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "tables")
	assert.Contains(t, body, "storage")
	assert.NotContains(t, body, "schema")
	ledger := body["ledger"].(map[string]any)
	assert.Equal(t, float64(1), ledger["double_accounted"])
}

func TestHandleTablesCheck(t *testing.T) {
	app := setupTestApp(t, seedTables(t), nil)
	status, body := decode(t, app, "/integrity/tables")
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", body["item_bank"].(map[string]any)["status"])

	broken := seedTables(t)
	broken.Items = unreachable{Table: memory.NewTable("item_bank")}
	status, _ = decode(t, setupTestApp(t, broken, nil), "/integrity/tables")
	assert.Equal(t, 503, status)
}

func TestHandleSchemaCheck_NotSQL(t *testing.T) {
	app := setupTestApp(t, seedTables(t), nil)
	status, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 501, status)
	assert.Equal(t, ErrSchemaUnavailable.Error(), body["error"])
}

func TestHandleStorageCheck(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		status, _ := decode(t, setupTestApp(t, seedTables(t), nil), "/integrity/storage")
		assert.Equal(t, 501, status)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
		status, body := decode(t, setupTestApp(t, seedTables(t), mockClient), "/integrity/storage")
		assert.Equal(t, 200, status)
		assert.Equal(t, "checked", body["status"])
		mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fix", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
		status, body := decode(t, setupTestApp(t, seedTables(t), mockClient), "/integrity/storage?fix=true")
		assert.Equal(t, 200, status)
		assert.Equal(t, "fixed", body["status"])
		mockClient.AssertExpectations(t)
	})
}

func TestHandleLedgerCheck(t *testing.T) {
	tables := seedTables(t)
	app := setupTestApp(t, tables, nil)

	status, body := decode(t, app, "/integrity/ledger")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, float64(0), body["executed"])
	assert.Len(t, tables.Items.(*memory.Table).Keys(), 2)

	status, body = decode(t, app, "/integrity/ledger?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	assert.Equal(t, float64(1), body["executed"])
	assert.Equal(t, []string{"free"}, tables.Items.(*memory.Table).Keys())
}

func TestHandleItemAudit(t *testing.T) {
	app := setupTestApp(t, seedTables(t), nil)
	status, body := decode(t, app, "/integrity/ledger/gone")
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["in_pool"])
	assert.Equal(t, []any{"req2"}, body["bound_to"])
}
