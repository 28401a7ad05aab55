// Package identifier implementa la aritmética pura de los identificadores
// embebidos: dígitos de verificación Luhn y la composición de campos de
// ancho fijo de batch numbers y seriales.
package identifier

import "fmt"

// ComputeCheckDigit calcula el dígito de verificación Luhn de una cadena de
// dígitos: de derecha a izquierda se duplica cada segundo dígito (restando 9
// si pasa de 9), se suman todos y el check es (10 - (suma mod 10)) mod 10.
// Detecta por construcción todos los errores de un solo dígito y la mayoría
// de transposiciones adyacentes.
func ComputeCheckDigit(digits string) (byte, error) {
	if digits == "" {
		return 0, fmt.Errorf("identifier: cadena vacía")
	}
	sum := 0
	double := true // el dígito inmediatamente a la izquierda del check se duplica
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("identifier: carácter no numérico %q en posición %d", c, i)
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10), nil
}

// Validate verifica que el último dígito de la cadena sea el check Luhn
// correcto del resto. Cadenas no numéricas o de menos de dos dígitos
// nunca validan.
func Validate(digitsWithCheck string) bool {
	if len(digitsWithCheck) < 2 {
		return false
	}
	payload := digitsWithCheck[:len(digitsWithCheck)-1]
	check, err := ComputeCheckDigit(payload)
	if err != nil {
		return false
	}
	return digitsWithCheck[len(digitsWithCheck)-1] == check
}

// ComputeDoubleCheckDigits calcula el check de dos dígitos usado por el serial
// completo: c1 = luhn(payload) y c2 = luhn(payload+c1). Como c2 cubre a c1,
// cualquier alteración de un solo dígito (incluido el propio check) invalida
// la cadena.
func ComputeDoubleCheckDigits(digits string) (string, error) {
	c1, err := ComputeCheckDigit(digits)
	if err != nil {
		return "", err
	}
	c2, err := ComputeCheckDigit(digits + string(c1))
	if err != nil {
		return "", err
	}
	return string([]byte{c1, c2}), nil
}

// ValidateDouble verifica los dos últimos dígitos como check encadenado.
func ValidateDouble(digitsWithCheck string) bool {
	if len(digitsWithCheck) < 3 {
		return false
	}
	payload := digitsWithCheck[:len(digitsWithCheck)-2]
	expected, err := ComputeDoubleCheckDigits(payload)
	if err != nil {
		return false
	}
	return digitsWithCheck[len(digitsWithCheck)-2:] == expected
}
