package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/pablini31/papelria/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReciboPDF(t *testing.T) {
	nombre := "Mostrador"
	venta := &model.Venta{
		NumeroRecibo:  "R-0001",
		NombreCliente: &nombre,
		Total:         decimal.RequireFromString("57.50"),
		Estado:        model.EstadoPendiente,
		MetodoPago:    model.MetodoTarjeta,
		CreatedAt:     time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Items: []model.ItemVenta{
			{ProductoID: 1, Cantidad: 3, PrecioUnitario: decimal.RequireFromString("12.50"),
				PrecioTotal: decimal.RequireFromString("37.50"),
				Producto:    &model.Producto{Nombre: "Cuaderno profesional cuadro chico 100 hojas"}},
			{ProductoID: 2, Cantidad: 2, PrecioUnitario: decimal.RequireFromString("10.00"),
				PrecioTotal: decimal.RequireFromString("20.00")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, GenerateReciboPDF(&buf, venta, "Papelería Centro"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}
