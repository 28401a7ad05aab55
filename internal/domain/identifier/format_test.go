package identifier_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/cannatrace/internal/domain/identifier"
)

var day = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Composición de identificadores de ancho fijo
// ──────────────────────────────────────────────────────────────────────────────

func TestComposeBatchNumber_AnchoFijo(t *testing.T) {
	got := identifier.ComposeBatchNumber(4, 2, day, 1)
	assert.Equal(t, "0402202501150001", got)
	assert.Len(t, got, identifier.BatchNumberLen)

	// Secuencia al máximo: sigue cabiendo en 4 dígitos.
	got = identifier.ComposeBatchNumber(99, 9, day, identifier.MaxBatchSequence)
	assert.Equal(t, "9909202501159999", got)
}

func TestComposeFullSerial_PayloadYCheck(t *testing.T) {
	full, err := identifier.ComposeFullSerial(4, 123, 7, day, 1, 1, 350)
	require.NoError(t, err)

	assert.Len(t, full, identifier.FullSerialLen)
	assert.Equal(t, "04123072025011500001000010350", full[:29],
		"payload: sede+strain+tipo+fecha+secLote+secUnidad+pesoCg")
	assert.True(t, identifier.ValidateDouble(full),
		"los dos últimos dígitos deben ser el check encadenado del payload")
}

func TestComposeShortSerial_ConYSinCheck(t *testing.T) {
	short, err := identifier.ComposeShortSerial(4, day, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "0425011500001", short)
	assert.Len(t, short, identifier.ShortSerialLen)

	checked, err := identifier.ComposeShortSerial(4, day, 1, true)
	require.NoError(t, err)
	assert.Equal(t, "04250115000017", checked)
	assert.Len(t, checked, identifier.ShortSerialCheckedLen)
	assert.True(t, identifier.Validate(checked))
}

// ──────────────────────────────────────────────────────────────────────────────
// Codificación de peso
// ──────────────────────────────────────────────────────────────────────────────

func TestEncodeWeightCentigrams(t *testing.T) {
	cases := []struct {
		grams string
		want  int
	}{
		{"0", 0},
		{"3.5", 350},
		{"3.504", 350},  // redondeo a centigramo
		{"3.505", 351},  // mitad redondea hacia arriba
		{"99.99", 9999}, // borde superior exacto
	}
	for _, tc := range cases {
		got, err := identifier.EncodeWeightCentigrams(decimal.RequireFromString(tc.grams))
		require.NoError(t, err, "peso %s", tc.grams)
		assert.Equal(t, tc.want, got, "peso %s", tc.grams)
	}
}

func TestEncodeWeightCentigrams_FueraDeRango(t *testing.T) {
	for _, grams := range []string{"-0.01", "100", "99.995"} {
		_, err := identifier.EncodeWeightCentigrams(decimal.RequireFromString(grams))
		assert.Error(t, err, "peso %s no cabe en 4 dígitos de centigramos", grams)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Extracción y clasificación
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchSequence(t *testing.T) {
	seq, err := identifier.BatchSequence("0402202501150037")
	require.NoError(t, err)
	assert.Equal(t, 37, seq)

	_, err = identifier.BatchSequence("0402")
	assert.Error(t, err, "largo incorrecto")

	_, err = identifier.BatchSequence("04022025011500x7")
	assert.Error(t, err, "no numérico")
}

func TestClassify(t *testing.T) {
	full, err := identifier.ComposeFullSerial(4, 123, 7, day, 1, 1, 350)
	require.NoError(t, err)

	cases := []struct {
		id    string
		kind  identifier.Kind
		valid bool
	}{
		{"0402202501150001", identifier.KindBatchNumber, true},
		{"0402202501150000", identifier.KindBatchNumber, false}, // secuencia cero
		{"0402999999990001", identifier.KindBatchNumber, false}, // fecha imposible
		{full, identifier.KindFullSerial, true},
		{full[:29] + "99", identifier.KindFullSerial, false}, // check alterado
		{"0425011500001", identifier.KindShortSerial, true},
		{"0425011500000", identifier.KindShortSerial, false}, // secuencia cero
		{"04250115000017", identifier.KindShortSerialChecked, true},
		{"04250115000018", identifier.KindShortSerialChecked, false},
		{"12345", identifier.KindUnknown, false},
		{"040220250115000a", identifier.KindUnknown, false},
		{"", identifier.KindUnknown, false},
	}
	for _, tc := range cases {
		kind, valid := identifier.Classify(tc.id)
		assert.Equal(t, tc.kind, kind, "id %q", tc.id)
		assert.Equal(t, tc.valid, valid, "id %q", tc.id)
	}
}
