//go:build integration

package router

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

type e2eEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("papeleria_test"),
		tcPostgres.WithUsername("papeleria"),
		tcPostgres.WithPassword("papeleria"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:            "test",
		DBDriver:       infra.DriverPostgres,
		DatabaseURL:    pgURL,
		DBMaxOpenConns: 20,
		DBMaxIdleConns: 5,
		RedisURL:       rdURL,
		TiendaNombre:   "Papeleria E2E",
	}

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	db, err := infra.NewDatabase(cfg, cb)
	require.NoError(t, err)
	require.NoError(t, infra.CheckDatabase(ctx, db))
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	srv := httptest.NewServer(New(cfg, db, rdb, cb))
	t.Cleanup(srv.Close)
	return &e2eEnv{server: srv, db: db, rdb: rdb}
}

func (e *e2eEnv) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (e *e2eEnv) producto(t *testing.T, nombre, barcode string, stock int) model.Producto {
	t.Helper()
	p := model.Producto{
		Nombre:       nombre,
		CodigoBarras: &barcode,
		Categoria:    "Papeleria",
		PrecioCompra: decimal.RequireFromString("5.00"),
		PrecioVenta:  decimal.RequireFromString("10.00"),
		StockActual:  stock,
		StockMinimo:  1,
	}
	require.NoError(t, e.db.Omit("Proveedor").Create(&p).Error)
	return p
}

func (e *e2eEnv) stock(t *testing.T, id uint) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Model(&model.Producto{}).Where("id = ?", id).Select("stock_actual").Scan(&n).Error)
	return n
}

func TestE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e in short mode")
	}
	env := setupE2E(t)

	t.Run("last unit sold exactly once", func(t *testing.T) {
		p := env.producto(t, "Compas escolar", "750999000001", 1)

		const buyers = 8
		codes := make([]int, buyers)
		var wg sync.WaitGroup
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				b, _ := json.Marshal(venta(fmt.Sprintf("C-%d", i), p.ID, 1, "10.00"))
				resp, err := env.server.Client().Post(env.server.URL+"/sales", "application/json", bytes.NewReader(b))
				if err != nil {
					return
				}
				resp.Body.Close()
				codes[i] = resp.StatusCode
			}(i)
		}
		wg.Wait()

		ok, conflict := 0, 0
		for _, c := range codes {
			switch c {
			case http.StatusCreated:
				ok++
			case http.StatusConflict:
				conflict++
			}
		}
		assert.Equal(t, 1, ok, "codes: %v", codes)
		assert.Equal(t, buyers-1, conflict, "codes: %v", codes)
		assert.Equal(t, 0, env.stock(t, p.ID))

		var movs int64
		require.NoError(t, env.db.Model(&model.MovimientoStock{}).Where("producto_id = ?", p.ID).Count(&movs).Error)
		assert.Equal(t, int64(1), movs)
	})

	t.Run("update and delete restore stock", func(t *testing.T) {
		p := env.producto(t, "Block de notas", "750999000002", 10)

		resp, body := env.do(t, http.MethodPost, "/sales", venta("U-1", p.ID, 4, "40.00"))
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
		id := uint(body["id"].(float64))
		assert.Equal(t, 6, env.stock(t, p.ID))

		resp, body = env.do(t, http.MethodPut, fmt.Sprintf("/sales/%d", id), venta("", p.ID, 2, "20.00"))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.Equal(t, 8, env.stock(t, p.ID))

		resp, _ = env.do(t, http.MethodPut, fmt.Sprintf("/sales/%d", id), venta("", p.ID, 11, "110.00"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, 8, env.stock(t, p.ID))

		resp, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/sales/%d", id), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 10, env.stock(t, p.ID))
	})

	t.Run("duplicate receipt number", func(t *testing.T) {
		p := env.producto(t, "Sacapuntas", "750999000003", 5)
		resp, _ := env.do(t, http.MethodPost, "/sales", venta("DUP-1", p.ID, 1, "10.00"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp, _ = env.do(t, http.MethodPost, "/sales", venta("DUP-1", p.ID, 1, "10.00"))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, 4, env.stock(t, p.ID))
	})

	t.Run("receipt email is queued", func(t *testing.T) {
		ctx := context.Background()
		p := env.producto(t, "Crayones", "750999000004", 3)
		resp, body := env.do(t, http.MethodPost, "/sales", venta("M-1", p.ID, 1, "10.00"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		id := uint(body["id"].(float64))

		before, err := env.rdb.LLen(ctx, worker.QueueEmail).Result()
		require.NoError(t, err)
		resp, _ = env.do(t, http.MethodPost, fmt.Sprintf("/sales/%d/receipt/email", id),
			map[string]string{"email": "cliente@correo.mx"})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		after, err := env.rdb.LLen(ctx, worker.QueueEmail).Result()
		require.NoError(t, err)
		assert.Equal(t, before+1, after)
	})

	t.Run("price lookup is cached", func(t *testing.T) {
		ctx := context.Background()
		env.producto(t, "Resistol", "750999000005", 2)
		resp, body := env.do(t, http.MethodGet, "/precio/750999000005", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		n, err := env.rdb.Exists(ctx, "precio:750999000005").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("summary reflects a new sale right away", func(t *testing.T) {
		ctx := context.Background()
		totalVentas := func() float64 {
			resp, body := env.do(t, http.MethodGet, "/reports", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			return body["summary"].(map[string]any)["totalSales"].(float64)
		}

		antes := totalVentas()
		n, err := env.rdb.Exists(ctx, "reportes:resumen").Result()
		require.NoError(t, err)
		require.Equal(t, int64(1), n)

		p := env.producto(t, "Tijeras", "750999000006", 4)
		resp, _ := env.do(t, http.MethodPost, "/sales", venta("RES-1", p.ID, 1, "10.00"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, antes+1, totalVentas())

		resp, _ = env.do(t, http.MethodPatch, fmt.Sprintf("/products/%d/stock", p.ID), map[string]int{"cantidad": 5})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		n, err = env.rdb.Exists(ctx, "reportes:resumen").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("health", func(t *testing.T) {
		resp, body := env.do(t, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "connected", body["db"])
		assert.Equal(t, "connected", body["redis"])
		assert.Equal(t, "closed", body["datastore_circuit"])
	})
}
