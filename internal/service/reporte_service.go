package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	VistaStockCritico         = "stock-critico"
	VistaProductosMasVendidos = "productos-mas-vendidos"
	VistaClientesHistorial    = "clientes-historial"
	VistaVentasDetalladas     = "ventas-detalladas"
	VistaResumenDiario        = "resumen-diario"
	VistaInventarioValorado   = "inventario-valorado"
	VistaDashboardCompleto    = "dashboard-completo"

	recientesLimit   = 10
	vistaLimit       = 50
	resumenDiasAtras = 30
)

// TiposReporte lists every view accepted by GET /reports/views.
var TiposReporte = []string{
	VistaStockCritico,
	VistaProductosMasVendidos,
	VistaClientesHistorial,
	VistaVentasDetalladas,
	VistaResumenDiario,
	VistaInventarioValorado,
	VistaDashboardCompleto,
}

// EsTipoReporte reports whether tipo names a known view.
func EsTipoReporte(tipo string) bool { return lo.Contains(TiposReporte, tipo) }

// ReporteService is the read-only query surface. It never touches stock.
type ReporteService interface {
	General(ctx context.Context) (*dto.ReporteGeneral, error)
	Vista(ctx context.Context, tipo string) (any, error)
	Exportar(ctx context.Context, tipo string) (*excelize.File, string, error)
}

type reporteService struct {
	repo     repository.ReporteRepository
	ventas   repository.VentaRepository
	clientes repository.ClienteRepository
	resumen  *ResumenCache
}

func NewReporteService(
	repo repository.ReporteRepository,
	ventas repository.VentaRepository,
	clientes repository.ClienteRepository,
	resumen *ResumenCache,
) ReporteService {
	return &reporteService{
		repo:     repo,
		ventas:   ventas,
		clientes: clientes,
		resumen:  resumen,
	}
}

func (s *reporteService) General(ctx context.Context) (*dto.ReporteGeneral, error) {
	var resumen dto.ResumenReporte
	if !s.resumen.get(ctx, &resumen) {
		r, err := s.repo.Resumen(ctx)
		if err != nil {
			return nil, err
		}
		resumen = *r
		s.resumen.set(ctx, resumen)
	}

	ventas, err := s.ventas.List(ctx, repository.VentaListFilter{Limit: recientesLimit})
	if err != nil {
		return nil, err
	}
	productos, err := s.repo.ProductosRecientes(ctx, recientesLimit)
	if err != nil {
		return nil, err
	}
	clientes, err := s.clientes.List(ctx, recientesLimit)
	if err != nil {
		return nil, err
	}

	return &dto.ReporteGeneral{
		Sales: lo.Map(ventas, func(v model.Venta, _ int) dto.VentaResponse {
			return ventaToResponse(&v)
		}),
		Products:  lo.Map(productos, productoToResponse),
		Customers: lo.Map(clientes, clienteToResponse),
		Summary:   resumen,
	}, nil
}

func (s *reporteService) Vista(ctx context.Context, tipo string) (any, error) {
	switch tipo {
	case VistaStockCritico:
		return filas(s.repo.StockCritico(ctx))
	case VistaProductosMasVendidos:
		return filas(s.repo.ProductosMasVendidos(ctx, vistaLimit))
	case VistaClientesHistorial:
		return filas(s.repo.ClientesHistorial(ctx, vistaLimit))
	case VistaVentasDetalladas:
		return filas(s.repo.VentasDetalladas(ctx, vistaLimit))
	case VistaResumenDiario:
		return filas(s.repo.ResumenDiario(ctx, time.Now().AddDate(0, 0, -resumenDiasAtras)))
	case VistaInventarioValorado:
		return filas(s.repo.InventarioValorado(ctx))
	case VistaDashboardCompleto:
		return s.dashboard(ctx)
	default:
		return nil, fmt.Errorf("%w: tipo de reporte %q desconocido", apierror.ErrValidation, tipo)
	}
}

func (s *reporteService) dashboard(ctx context.Context) (*dto.DashboardCompleto, error) {
	critico, err := s.repo.ContarStockCritico(ctx)
	if err != nil {
		return nil, err
	}
	top, err := filas(s.repo.ProductosMasVendidos(ctx, 5))
	if err != nil {
		return nil, err
	}
	clientes, err := filas(s.repo.ClientesHistorial(ctx, 5))
	if err != nil {
		return nil, err
	}
	hoy := time.Now().Truncate(24 * time.Hour)
	dias, err := s.repo.ResumenDiario(ctx, hoy)
	if err != nil {
		return nil, err
	}
	resumenHoy := dto.ResumenDiarioRow{Fecha: hoy.Format(time.DateOnly)}
	if len(dias) > 0 {
		resumenHoy = dias[0]
	}
	return &dto.DashboardCompleto{
		StockCritico:         critico,
		ProductosMasVendidos: top,
		ClientesTop:          clientes,
		ResumenHoy:           resumenHoy,
	}, nil
}

// filas keeps an empty view as [] in JSON rather than null.
func filas[T any](rows []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// ── XLSX export ───────────────────────────────────────────────────────────────

type hojaExport struct {
	nombre string
	filas  any
}

// Exportar renders a view as a workbook; dashboard-completo gets one sheet
// per section. The caller closes the file.
func (s *reporteService) Exportar(ctx context.Context, tipo string) (*excelize.File, string, error) {
	data, err := s.Vista(ctx, tipo)
	if err != nil {
		return nil, "", err
	}

	hojas := []hojaExport{{tipo, data}}
	if d, ok := data.(*dto.DashboardCompleto); ok {
		hojas = []hojaExport{
			{"productos-mas-vendidos", d.ProductosMasVendidos},
			{"clientes-top", d.ClientesTop},
			{"resumen-hoy", []dto.ResumenDiarioRow{d.ResumenHoy}},
		}
	}

	f := excelize.NewFile()
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range hojas {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", h.nombre); err != nil {
				_ = f.Close()
				return nil, "", err
			}
		} else if _, err := f.NewSheet(h.nombre); err != nil {
			_ = f.Close()
			return nil, "", err
		}
		if err := escribirHoja(f, h.nombre, h.filas, headerStyle); err != nil {
			_ = f.Close()
			return nil, "", err
		}
	}

	filename := fmt.Sprintf("reporte_%s_%s.xlsx", tipo, time.Now().Format("20060102"))
	return f, filename, nil
}

// escribirHoja writes a slice of row structs: one column per json-tagged
// field, header row first.
func escribirHoja(f *excelize.File, hoja string, filas any, headerStyle int) error {
	rv := reflect.ValueOf(filas)
	if rv.Kind() != reflect.Slice {
		return fmt.Errorf("export: %T no es una lista", filas)
	}
	rt := rv.Type().Elem()

	var cols []int
	for i := 0; i < rt.NumField(); i++ {
		name := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, i)
		cell, _ := excelize.CoordinatesToCellName(len(cols), 1)
		if err := f.SetCellValue(hoja, cell, name); err != nil {
			return err
		}
		_ = f.SetCellStyle(hoja, cell, cell, headerStyle)
	}

	for r := 0; r < rv.Len(); r++ {
		row := rv.Index(r)
		for c, fi := range cols {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(hoja, cell, celda(row.Field(fi))); err != nil {
				return err
			}
		}
	}

	if len(cols) > 0 {
		last, _ := excelize.ColumnNumberToName(len(cols))
		_ = f.SetColWidth(hoja, "A", last, 18)
	}
	return nil
}

func celda(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	switch x := v.Interface().(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	default:
		return x
	}
}
