package service

import (
	"strings"
	"unicode"
)

const (
	cjkTokenWeight   = 1.6
	asciiTokenWeight = 1.3
)

// TokenEstimator aproxima el costo en tokens de un texto sin llamadas externas.
type TokenEstimator struct{}

var DefaultTokenEstimator = TokenEstimator{}

// Estimate suma 1.6 por ideograma CJK y 1.3 por palabra ASCII separada por espacios, truncando.
func (TokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	cjk := 0
	var rest strings.Builder
	rest.Grow(len(text))
	for _, r := range text {
		if isCJKIdeograph(r) {
			cjk++
			rest.WriteByte(' ')
			continue
		}
		rest.WriteRune(r)
	}

	ascii := 0
	for _, field := range strings.Fields(rest.String()) {
		if hasASCIIGraphic(field) {
			ascii++
		}
	}
	return int(float64(cjk)*cjkTokenWeight + float64(ascii)*asciiTokenWeight)
}

func (TokenEstimator) ShouldCompress(current, max int) bool {
	return max > 0 && current > max
}

// ProgressPercent devuelve el porcentaje consumido del presupuesto en [0,100].
func (TokenEstimator) ProgressPercent(current, max int) int {
	if max <= 0 || current <= 0 {
		return 0
	}
	p := current * 100 / max
	if p > 100 {
		return 100
	}
	return p
}

func isCJKIdeograph(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF)
}

func hasASCIIGraphic(s string) bool {
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsGraphic(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
