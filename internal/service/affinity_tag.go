package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrTagParseFailure no se propaga: una respuesta sin etiqueta vale delta 0.
var ErrTagParseFailure = errors.New("affinity tag not found")

var (
	favorTagRe   = regexp.MustCompile(`\[FAVOR(_PEAK|_SLOW)?:([+-]?)(\d*):([^\]]*)\]`)
	optionsTagRe = regexp.MustCompile(`\[OPTIONS\|([^|\]]*)\|([^|\]]*)\|([^|\]]*)\|([^|\]]*)\]`)
	radarTagRe   = regexp.MustCompile(`\[TAG:([^|\]]*)\|([^|\]]*)\|建议:([^\]]*)\]`)
)

// AffinityTag es la forma tipada de [FAVOR<SUFIJO>:<SIGNO><DIGITOS>:<MOTIVO>].
type AffinityTag struct {
	Value  int    `json:"value"`
	Reason string `json:"reason"`
	IsPeak bool   `json:"is_peak"`
	IsSlow bool   `json:"is_slow"`
}

// RadarTag es la sugerencia de coaching [TAG:tipo|contenido|建议:sugerencia].
type RadarTag struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	Suggestion string `json:"suggestion"`
}

// AffinityTagCodec es la frontera de serializacion del micro-protocolo de etiquetas.
type AffinityTagCodec struct{}

var DefaultAffinityTagCodec = AffinityTagCodec{}

// Decode toma la primera etiqueta FAVOR. Digitos invalidos valen 0; nunca entra en panico.
func (AffinityTagCodec) Decode(raw string) (AffinityTag, bool) {
	m := favorTagRe.FindStringSubmatch(raw)
	if m == nil {
		return AffinityTag{}, false
	}
	value, err := strconv.Atoi(m[3])
	if err != nil {
		value = 0
	}
	if m[2] == "-" {
		value = -value
	}
	return AffinityTag{
		Value:  value,
		Reason: m[4],
		IsPeak: m[1] == "_PEAK",
		IsSlow: m[1] == "_SLOW",
	}, true
}

// Strip elimina todas las etiquetas FAVOR hasta un punto fijo, asi strip(strip(x)) == strip(x).
func (AffinityTagCodec) Strip(raw string) string {
	return stripAll(favorTagRe, raw)
}

// Encode es la inversa de Decode; el motivo no debe contener ']'.
func (AffinityTagCodec) Encode(value int, reason string, peak, slow bool) string {
	suffix := ""
	switch {
	case peak:
		suffix = "_PEAK"
	case slow:
		suffix = "_SLOW"
	}
	sign := "+"
	if value < 0 {
		sign = "-"
		value = -value
	}
	reason = strings.ReplaceAll(reason, "]", "")
	return fmt.Sprintf("[FAVOR%s:%s%d:%s]", suffix, sign, value, reason)
}

// DecodeOptions devuelve las cuatro alternativas de [OPTIONS|a|b|c|d].
func (AffinityTagCodec) DecodeOptions(raw string) ([]string, bool) {
	m := optionsTagRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	out := make([]string, 4)
	for i := range out {
		out[i] = strings.TrimSpace(m[i+1])
	}
	return out, true
}

func (AffinityTagCodec) StripOptions(raw string) string {
	return stripAll(optionsTagRe, raw)
}

func (AffinityTagCodec) EncodeOptions(options [4]string) string {
	clean := make([]string, len(options))
	for i, o := range options {
		clean[i] = strings.NewReplacer("|", "", "]", "").Replace(o)
	}
	return "[OPTIONS|" + strings.Join(clean, "|") + "]"
}

func (AffinityTagCodec) DecodeRadar(raw string) (RadarTag, bool) {
	m := radarTagRe.FindStringSubmatch(raw)
	if m == nil {
		return RadarTag{}, false
	}
	return RadarTag{
		Type:       strings.TrimSpace(m[1]),
		Content:    strings.TrimSpace(m[2]),
		Suggestion: strings.TrimSpace(m[3]),
	}, true
}

func (AffinityTagCodec) StripRadar(raw string) string {
	return stripAll(radarTagRe, raw)
}

func (AffinityTagCodec) EncodeRadar(tag RadarTag) string {
	r := strings.NewReplacer("|", "", "]", "")
	return fmt.Sprintf("[TAG:%s|%s|建议:%s]", r.Replace(tag.Type), r.Replace(tag.Content), strings.ReplaceAll(tag.Suggestion, "]", ""))
}

// StripAll quita los tres tipos de etiqueta del texto visible.
func (c AffinityTagCodec) StripAll(raw string) string {
	out := strings.TrimSpace(raw)
	for {
		next := c.StripRadar(c.StripOptions(c.Strip(out)))
		if next == out {
			return out
		}
		out = next
	}
}

// stripAll repite el reemplazo porque quitar una etiqueta puede unir los bordes de otra.
func stripAll(re *regexp.Regexp, raw string) string {
	out := raw
	for re.MatchString(out) {
		out = re.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}
