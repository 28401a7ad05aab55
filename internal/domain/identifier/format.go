package identifier

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Anchos de los identificadores compuestos. Todos son cadenas numéricas de
// ancho fijo con campos rellenados con ceros a la izquierda.
const (
	// Batch number: sede(2) + tipo de lote(2) + fecha AAAAMMDD(8) + secuencia diaria(4).
	BatchNumberLen = 16
	// Serial completo: sede(2) + strain(3) + tipo de producto(2) + fecha AAAAMMDD(8)
	// + secuencia de lote(5) + secuencia de unidad(5) + peso en centigramos(4) + check(2).
	FullSerialLen = 31
	// Serial corto: sede(2) + fecha AAMMDD(6) + secuencia diaria(5).
	ShortSerialLen = 13
	// Serial corto con dígito Luhn adicional para etiquetas EAN.
	ShortSerialCheckedLen = 14

	// Capacidad por partición de cada secuencia.
	MaxBatchSequence = 9999  // 4 dígitos diarios por (sede, tipo)
	MaxUnitSequence  = 99999 // 5 dígitos diarios por sede
	MaxShortSequence = 99999

	// Peso máximo codificable: 4 dígitos de centigramos (99.99 g).
	MaxWeightCentigrams = 9999
)

// Kind clasifica un identificador por su forma.
type Kind string

const (
	KindBatchNumber        Kind = "batch_number"
	KindFullSerial         Kind = "full_serial"
	KindShortSerial        Kind = "short_serial"
	KindShortSerialChecked Kind = "short_serial_checked"
	KindUnknown            Kind = "unknown"
)

// ComposeBatchNumber arma el batch number de 16 dígitos.
// Los rangos de sede y tipo los valida el caso de uso antes de asignar secuencia.
func ComposeBatchNumber(siteID, batchType int, day time.Time, seq int) string {
	return fmt.Sprintf("%02d%02d%s%04d", siteID, batchType, day.Format("20060102"), seq)
}

// ComposeFullSerial arma el serial completo de 31 dígitos, incluido el check
// encadenado de dos dígitos sobre los 29 de payload.
func ComposeFullSerial(siteID, strainID, productType int, day time.Time, batchSeq, unitSeq, weightCentigrams int) (string, error) {
	payload := fmt.Sprintf("%02d%03d%02d%s%05d%05d%04d",
		siteID, strainID, productType, day.Format("20060102"), batchSeq, unitSeq, weightCentigrams)
	check, err := ComputeDoubleCheckDigits(payload)
	if err != nil {
		return "", err
	}
	return payload + check, nil
}

// ComposeShortSerial arma el serial corto de 13 dígitos; con withCheck añade
// el dígito Luhn para compatibilidad con etiquetas de código de barras.
func ComposeShortSerial(siteID int, day time.Time, seq int, withCheck bool) (string, error) {
	s := fmt.Sprintf("%02d%s%05d", siteID, day.Format("060102"), seq)
	if !withCheck {
		return s, nil
	}
	check, err := ComputeCheckDigit(s)
	if err != nil {
		return "", err
	}
	return s + string(check), nil
}

// EncodeWeightCentigrams codifica gramos como centigramos redondeados
// (round(g*100)). Pesos negativos o por encima de 99.99 g no caben en los
// 4 dígitos del serial.
func EncodeWeightCentigrams(grams decimal.Decimal) (int, error) {
	cg := grams.Mul(decimal.NewFromInt(100)).Round(0)
	v := int(cg.IntPart())
	if v < 0 || v > MaxWeightCentigrams {
		return 0, fmt.Errorf("identifier: peso %s g fuera del rango 0-99.99", grams)
	}
	return v, nil
}

// BatchSequence extrae la secuencia diaria (últimos 4 dígitos) de un batch number.
func BatchSequence(batchNumber string) (int, error) {
	if len(batchNumber) != BatchNumberLen || !allDigits(batchNumber) {
		return 0, fmt.Errorf("identifier: batch number malformado: %q", batchNumber)
	}
	return strconv.Atoi(batchNumber[12:16])
}

// Classify determina la forma de un identificador y si es válido.
// Los batch numbers no llevan check digit: se validan estructuralmente
// (anchos, fecha y secuencia distinta de cero). Las formas que embeben check
// (serial completo, serial corto con check) se validan con Luhn.
func Classify(id string) (Kind, bool) {
	if !allDigits(id) {
		return KindUnknown, false
	}
	switch len(id) {
	case BatchNumberLen:
		return KindBatchNumber, validBatchShape(id)
	case FullSerialLen:
		return KindFullSerial, ValidateDouble(id)
	case ShortSerialLen:
		return KindShortSerial, validShortShape(id)
	case ShortSerialCheckedLen:
		return KindShortSerialChecked, validShortShape(id[:ShortSerialLen]) && Validate(id)
	}
	return KindUnknown, false
}

func validBatchShape(id string) bool {
	if _, err := time.Parse("20060102", id[4:12]); err != nil {
		return false
	}
	return id[12:16] != "0000"
}

func validShortShape(id string) bool {
	if _, err := time.Parse("060102", id[2:8]); err != nil {
		return false
	}
	return id[8:13] != "00000"
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
