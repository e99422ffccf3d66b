package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
	replyFieldRe = regexp.MustCompile(`(?is)"reply"\s*:\s*"((?:\\.|[^"\\])*)"`)
)

// ParsedReply es la salida del backend ya separada en texto visible y etiquetas tipadas.
type ParsedReply struct {
	Text    string
	Tag     AffinityTag
	Tagged  bool
	Options []string
	Radar   *RadarTag
}

// Delta vale 0 cuando la respuesta no trajo etiqueta.
func (p ParsedReply) Delta() int {
	if !p.Tagged {
		return 0
	}
	return p.Tag.Value
}

// ReplyParser centraliza la limpieza y el parseo de respuestas del backend.
type ReplyParser struct {
	codec AffinityTagCodec
}

var DefaultReplyParser = ReplyParser{}

// Parse acepta el formato de etiqueta ("texto [FAVOR:+3:motivo]") y tambien un objeto
// JSON {"reply","delta","reason"}. Una salida mal formada nunca falla: queda con delta 0.
func (p ReplyParser) Parse(raw string) ParsedReply {
	cleaned := cleanFences(raw)

	if obj := extractFirstJSONObject(cleaned); obj != "" {
		if out, ok := p.parseJSON(obj, cleaned); ok {
			return out
		}
	}
	if text, ok := extractReplyByRegex(cleaned); ok {
		return p.parseTagged(text, cleaned)
	}
	return p.parseTagged(cleaned, cleaned)
}

// parseJSON decodifica las etiquetas de toda la salida, con el objeto reemplazado por su reply,
// asi la primera etiqueta gana aunque venga fuera del JSON. El delta del JSON es el ultimo recurso.
func (p ReplyParser) parseJSON(obj, cleaned string) (ParsedReply, bool) {
	var tmp struct {
		Reply   string   `json:"reply"`
		Delta   *int     `json:"delta,omitempty"`
		Reason  string   `json:"reason,omitempty"`
		Peak    bool     `json:"peak,omitempty"`
		Options []string `json:"options,omitempty"`
	}
	if err := json.Unmarshal([]byte(obj), &tmp); err != nil {
		return ParsedReply{}, false
	}
	reply := strings.TrimSpace(unescapeMaybeDoubleEscaped(tmp.Reply))
	if reply == "" {
		return ParsedReply{}, false
	}
	source := strings.Replace(cleaned, obj, reply, 1)
	out := p.parseTagged(reply, source)
	if tmp.Delta != nil && !out.Tagged {
		out.Tag = AffinityTag{Value: *tmp.Delta, Reason: tmp.Reason, IsPeak: tmp.Peak}
		out.Tagged = true
	}
	if len(tmp.Options) == 4 && out.Options == nil {
		out.Options = tmp.Options
	}
	return out, true
}

// parseTagged decodifica las etiquetas de source y deja en Text solo lo visible de text.
func (p ReplyParser) parseTagged(text, source string) ParsedReply {
	out := ParsedReply{Text: p.codec.StripAll(text)}
	if tag, ok := p.codec.Decode(source); ok {
		out.Tag = tag
		out.Tagged = true
	}
	if opts, ok := p.codec.DecodeOptions(source); ok {
		out.Options = opts
	}
	if radar, ok := p.codec.DecodeRadar(source); ok {
		out.Radar = &radar
	}
	return out
}

// cleanFences quita fences ```json ... ``` y BOM.
func cleanFences(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractReplyByRegex rescata "reply" aunque el JSON este sucio.
func extractReplyByRegex(s string) (string, bool) {
	m := replyFieldRe.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	unq, err := strconv.Unquote(`"` + m[1] + `"`)
	if err != nil {
		unq = unescapeMinimalEscapes(m[1])
	}
	unq = strings.TrimSpace(unq)
	if unq == "" {
		return "", false
	}
	return unq, true
}

func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}

// unescapeMaybeDoubleEscaped arregla texto que el modelo manda doble-escapado.
func unescapeMaybeDoubleEscaped(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	quoted := `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	if unq, err := strconv.Unquote(quoted); err == nil {
		return unq
	}
	return unescapeMinimalEscapes(s)
}

func unescapeMinimalEscapes(s string) string {
	return strings.NewReplacer(
		`\\`, `\`,
		`\"`, `"`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	).Replace(s)
}
