// Package pdf genera la etiqueta imprimible de una unidad serializada:
// el serial corto como código de barras escaneable (para eso existe la
// variante EAN), el serial completo en texto y los datos de trazabilidad
// del lote.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tu-usuario/cannatrace/internal/application/label"
	"github.com/tu-usuario/cannatrace/internal/domain/entity"
)

var _ label.PDFGenerator = (*MarotoLabelGenerator)(nil)

// MarotoLabelGenerator implementa label.PDFGenerator usando Maroto v2.
type MarotoLabelGenerator struct{}

// NewMarotoLabelGenerator construye el generador.
func NewMarotoLabelGenerator() *MarotoLabelGenerator { return &MarotoLabelGenerator{} }

// GenerateUnitLabel genera la etiqueta A6 de la unidad y devuelve sus bytes.
// batch puede ser nil si el lote ya fue purgado; la etiqueta se emite igual.
func (g *MarotoLabelGenerator) GenerateUnitLabel(_ context.Context, serial *entity.SerialNumber, batch *entity.Batch) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A6).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		Build()

	m := maroto.New(cfg)

	m.AddRows(row.New(8).Add(
		text.NewCol(12, "UNIDAD SERIALIZADA", props.Text{
			Size: 11, Style: fontstyle.Bold, Align: align.Center,
		}),
	))
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.4}))

	// Código de barras del serial corto: es lo que escanea el POS.
	m.AddRows(row.New(22).Add(
		code.NewBarCol(12, serial.ShortSerialNumber, props.Barcode{
			Center: true, Percent: 90,
		}),
	))
	m.AddRows(row.New(5).Add(
		text.NewCol(12, serial.ShortSerialNumber, props.Text{
			Size: 9, Align: align.Center, Style: fontstyle.Bold,
		}),
	))
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))

	m.AddRows(labelField("Serial", serial.FullSerialNumber))
	m.AddRows(labelField("Lote", serial.BatchNumber))
	m.AddRows(labelField("Peso", serial.WeightGrams.StringFixed(2)+" g"))
	if batch != nil {
		m.AddRows(labelField("Estado lote", batch.Status))
		if batch.SourceBatchNumber != "" {
			m.AddRows(labelField("Lote origen", batch.SourceBatchNumber))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar etiqueta: %w", err)
	}
	return doc.GetBytes(), nil
}

func labelField(name, value string) core.Row {
	return row.New(5).Add(
		text.NewCol(4, name, props.Text{Size: 7, Align: align.Left}),
		text.NewCol(8, value, props.Text{Size: 8, Align: align.Left, Style: fontstyle.Bold}),
	)
}
