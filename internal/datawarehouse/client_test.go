package datawarehouse

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/qes/quotation-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBuildConnectionString(t *testing.T) {
	connStr := buildConnectionString(&config.DataWarehouseConfig{
		URL:      "dw.example.net/erp",
		User:     "reader",
		Password: "p@ss word",
	})

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "dw.example.net:1433", u.Host)
	assert.Equal(t, "reader", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss word", password)
	assert.Equal(t, "erp", u.Query().Get("database"))
	assert.Equal(t, "ReadOnly", u.Query().Get("ApplicationIntent"))

	custom := buildConnectionString(&config.DataWarehouseConfig{URL: "10.0.0.5:14330", User: "u", Password: "p"})
	u, err = url.Parse(custom)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:14330", u.Host)
	assert.Empty(t, u.Query().Get("database"))
}

func TestNewClient_DisabledOrIncomplete(t *testing.T) {
	client, err := NewClient(&config.DataWarehouseConfig{Enabled: false}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, client)

	client, err = NewClient(&config.DataWarehouseConfig{Enabled: true, URL: "dw:1433/erp"}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, client)

	assert.Equal(t, []string{"user", "password"}, missingCredentials(&config.DataWarehouseConfig{URL: "x"}))
}

func TestNilClient(t *testing.T) {
	var client *Client
	assert.False(t, client.IsEnabled())
	assert.NoError(t, client.Close())
	assert.Equal(t, "disabled", client.HealthCheck(context.Background()).Status)
	_, err := client.QueryRow(context.Background(), "SELECT 1")
	assert.Error(t, err)
}

func newSQLiteClient(t *testing.T) *Client {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	db, err := gdb.DB()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE products (ProductId TEXT PRIMARY KEY, ProductName TEXT, Price TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO products VALUES ('p-1', 'Data Logger', '1200.50')`)
	require.NoError(t, err)

	return NewClientFromDB(db, time.Second, zap.NewNop())
}

func text(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	}
	return ""
}

func TestClient_QueryRow(t *testing.T) {
	client := newSQLiteClient(t)
	ctx := context.Background()

	row, err := client.QueryRow(ctx, `SELECT ProductId, ProductName, Price FROM products WHERE ProductId = ?`, "p-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Data Logger", text(row["ProductName"]))
	assert.Equal(t, "1200.50", text(row["Price"]))

	row, err = client.QueryRow(ctx, `SELECT ProductId FROM products WHERE ProductId = ?`, "missing")
	require.NoError(t, err)
	assert.Nil(t, row)

	_, err = client.QueryRow(ctx, `SELECT nope FROM nowhere`)
	assert.Error(t, err)
}

func TestClient_HealthCheck(t *testing.T) {
	client := newSQLiteClient(t)
	assert.True(t, client.IsEnabled())

	status := client.HealthCheck(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Empty(t, status.Error)

	require.NoError(t, client.Close())
	assert.Equal(t, "unhealthy", client.HealthCheck(context.Background()).Status)
}
