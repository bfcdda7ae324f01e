package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/service"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

type testServer struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{Env: "test", TiendaNombre: "Papeleria Test"}
	return &testServer{t: t, db: db, r: New(cfg, db, nil, nil)}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func venta(recibo string, productoID uint, cantidad int, total string) map[string]any {
	return map[string]any{
		"numero_recibo": recibo,
		"metodo_pago":   "efectivo",
		"total":         json.Number(total),
		"items": []map[string]any{
			{"producto_id": productoID, "cantidad": cantidad, "precio_unitario": json.Number("10.00")},
		},
	}
}

func TestSalesLifecycle(t *testing.T) {
	s := newTestServer(t)
	p := testutil.Producto(t, s.db, "Lapiz HB", 10, "10.00")

	w := s.do(http.MethodPost, "/sales", venta("R-100", p.ID, 4, "40.00"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := uint(created["id"].(float64))
	assert.Equal(t, 6, testutil.Stock(t, s.db, p.ID))

	w = s.do(http.MethodGet, fmt.Sprintf("/sales/%d/items", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do(http.MethodPut, fmt.Sprintf("/sales/%d", id), venta("", p.ID, 2, "20.00"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 8, testutil.Stock(t, s.db, p.ID))
	assert.Equal(t, "R-100", decode[map[string]any](t, w)["numero_recibo"])

	w = s.do(http.MethodGet, fmt.Sprintf("/sales/%d/receipt", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodPost, fmt.Sprintf("/sales/%d/receipt/email", id), map[string]string{"email": "a@b.mx"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/sales/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])
	assert.Equal(t, 10, testutil.Stock(t, s.db, p.ID))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/sales/%d", id), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, fmt.Sprintf("/sales/%d", id), nil).Code)
}

func TestSalesErrors(t *testing.T) {
	s := newTestServer(t)
	p := testutil.Producto(t, s.db, "Marcador", 1, "10.00")

	w := s.do(http.MethodPost, "/sales", venta("R-1", p.ID, 2, "20.00"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[map[string]any](t, w)["error"], "stock insuficiente")
	assert.Equal(t, 1, testutil.Stock(t, s.db, p.ID))

	w = s.do(http.MethodPost, "/sales", venta("R-2", 999, 1, "10.00"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/sales", venta("R-3", p.ID, 0, "0"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/sales", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/sales/abc", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/sales/77/items", nil).Code)
}

func TestProductsStockAndPrice(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/products", map[string]any{
		"nombre":        "Cartulina",
		"categoria":     "Papel",
		"codigo_barras": "750100",
		"precio_compra": json.Number("3.50"),
		"precio_venta":  json.Number("6.00"),
		"stock_actual":  1,
		"stock_minimo":  5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(decode[map[string]any](t, w)["id"].(float64))

	w = s.do(http.MethodGet, "/inventario/alertas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do(http.MethodPatch, fmt.Sprintf("/products/%d/stock", id), map[string]int{"cantidad": 9})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 10, testutil.Stock(t, s.db, id))

	w = s.do(http.MethodGet, fmt.Sprintf("/products/%d/movimientos", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]map[string]any](t, w))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/precio/750100", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/precio/000", nil).Code)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	testutil.Producto(t, s.db, "Folder", 0, "4.00")

	w := s.do(http.MethodGet, "/reports/views", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "tipos_reportes")

	w = s.do(http.MethodGet, "/reports/views?tipo=stock-critico", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "stock-critico", body["tipo"])
	assert.Len(t, body["data"], 1)

	w = s.do(http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[map[string]any](t, w)["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["outOfStockProducts"])

	w = s.do(http.MethodGet, "/reports/export?tipo=inventario-valorado", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/reports/export?tipo=nada", nil).Code)
}

func TestReportViews_EmptyDatabase(t *testing.T) {
	s := newTestServer(t)

	for _, tipo := range service.TiposReporte {
		t.Run(tipo, func(t *testing.T) {
			w := s.do(http.MethodGet, "/reports/views?tipo="+tipo, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Data json.RawMessage `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tipo != service.VistaDashboardCompleto {
				assert.JSONEq(t, "[]", string(body.Data))
				return
			}
			var dash map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(body.Data, &dash))
			assert.JSONEq(t, "[]", string(dash["productos_mas_vendidos"]))
			assert.JSONEq(t, "[]", string(dash["clientes_top"]))
			assert.JSONEq(t, "0", string(dash["stock_critico"]))
		})
	}
}

func TestDegradedReads(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil).Code)

	testutil.CloseDB(s.db)

	for _, path := range []string{"/products", "/sales", "/customers"} {
		w := s.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, "[]", w.Body.String(), path)
	}

	w := s.do(http.MethodGet, "/reports", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/products/1", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/sales", venta("R-9", 1, 1, "10.00")).Code)

	w = s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "disabled", decode[map[string]any](t, w)["redis"])
}
