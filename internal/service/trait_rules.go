package service

import (
	"fmt"
	"math"
	"strings"

	"affinity-chat/internal/domain"
)

// Rango de delta base por sentimiento, ambos extremos incluidos.
type DeltaRange struct {
	Min, Max int
}

var (
	PositiveDeltaRange = DeltaRange{2, 8}
	NegativeDeltaRange = DeltaRange{-8, -2}
	QuestionDeltaRange = DeltaRange{1, 3}
	NeutralDeltaRange  = DeltaRange{-1, 1}
)

const (
	sensitivityPenalty    = 2
	sharedActivityBonus   = 2
	lowAffinityThreshold  = 20
	lowAffinityPenalty    = 2
	highAffinityThreshold = 80
	highAffinityFactor    = 0.6
	deltaEnvelope         = 10

	breakupThreshold = 10
	angryWindow      = 6
	angryNegativeMin = 3
)

type SpecialEvent string

const (
	EventBreakup SpecialEvent = "breakup"
	EventAngry   SpecialEvent = "angry"
)

// FallbackReply es la salida del motor de reglas; Text ya trae la etiqueta FAVOR.
type FallbackReply struct {
	Text      string
	Delta     int
	Reason    string
	IsPeak    bool
	Sentiment Sentiment
}

// TraitRuleEngine genera respuestas deterministas-pero-aleatorias cuando no hay backend remoto.
type TraitRuleEngine struct {
	classifier SentimentClassifier
	rand       domain.RandSource
	codec      AffinityTagCodec
	peaks      domain.PeakDetector
}

func NewTraitRuleEngine(classifier SentimentClassifier, rnd domain.RandSource) *TraitRuleEngine {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &TraitRuleEngine{
		classifier: classifier,
		rand:       rnd,
		peaks:      domain.PeakDetector{Rand: rnd},
	}
}

// Generate aplica, en orden: clasificacion, estilo, plantilla, reescrituras, delta, modificadores, clamp y motivo.
func (e *TraitRuleEngine) Generate(input string, persona domain.Persona, round, affinity int, history []domain.Message) FallbackReply {
	sentiment := e.classifier.Classify(input)
	traits := persona.Traits
	style := traits.Profile().Style
	msg := strings.ToLower(input)

	text := e.selectTemplate(style, sentiment, msg, traits, round, history)
	text = e.rewrite(text, sentiment, msg, traits, style)

	delta := e.sampleDelta(sentiment)
	delta = applyTraitModifiers(delta, sentiment, msg, traits)
	delta = dampenExtremes(delta, affinity)
	delta = clampDelta(delta)

	reason := e.reasonFor(delta)
	newValue := domain.ClampAffinity(affinity + delta)
	peak := e.peaks.IsPeak(affinity, newValue, delta)

	return FallbackReply{
		Text:      text + e.codec.Encode(delta, reason, peak, false),
		Delta:     delta,
		Reason:    reason,
		IsPeak:    peak,
		Sentiment: sentiment,
	}
}

func depthBucket(round int) int {
	switch {
	case round < 5:
		return depthShallow
	case round < 15:
		return depthMedium
	default:
		return depthDeep
	}
}

func (e *TraitRuleEngine) selectTemplate(style domain.ResponseStyle, sentiment Sentiment, msg string, traits domain.PersonaTraits, round int, history []domain.Message) string {
	if sentiment != SentimentNegative {
		for _, h := range traits.Hobbies {
			if containsAny(msg, h.Keywords()) {
				if tpls := hobbyTemplates[style]; len(tpls) > 0 {
					return fmt.Sprintf(e.pick(tpls), h.Label())
				}
			}
		}
	}

	table, ok := replyTemplates[style]
	if !ok {
		table = replyTemplates[domain.StyleNormal]
	}
	candidates := table[sentiment][depthBucket(round)]
	if len(candidates) == 0 {
		return "嗯。"
	}
	idx := e.intn(len(candidates))
	// Evita repetir literalmente la ultima respuesta del personaje.
	if last := lastPersonaContent(history); last != "" && len(candidates) > 1 && strings.HasPrefix(last, candidates[idx]) {
		idx = (idx + 1) % len(candidates)
	}
	return candidates[idx]
}

// rewrite aplica las transformaciones por rasgo en orden fijo.
func (e *TraitRuleEngine) rewrite(text string, sentiment Sentiment, msg string, traits domain.PersonaTraits, style domain.ResponseStyle) string {
	if traits.HasMarker(domain.MarkerSensitive) && sentiment == SentimentNegative {
		text = "你这么说，我真的有点受伤……" + text
	}
	if traits.HasMarker(domain.MarkerJealous) && containsAny(msg, friendTopicKeywords) {
		text += "……那个人是谁呀？你们很熟吗？"
	}
	if traits.HasMarker(domain.MarkerInsecure) && sentiment == SentimentPositive {
		text += "你是认真的吗？不会只是随便说说吧？"
	}
	if traits.HasMarker(domain.MarkerRomantic) && sentiment == SentimentPositive {
		text += "感觉连今天的风都是甜的。"
	}
	if traits.Profanity == domain.ProfanityNormal && sentiment == SentimentNegative {
		text = "啧，" + text
	}
	switch traits.Emoji {
	case domain.EmojiFrequent:
		text += styleEmojis[style]
	case domain.EmojiNormal:
		if sentiment == SentimentPositive {
			text += styleEmojis[style]
		}
	}
	return text
}

func (e *TraitRuleEngine) sampleDelta(s Sentiment) int {
	var r DeltaRange
	switch s {
	case SentimentPositive:
		r = PositiveDeltaRange
	case SentimentNegative:
		r = NegativeDeltaRange
	case SentimentQuestion:
		r = QuestionDeltaRange
	default:
		r = NeutralDeltaRange
	}
	return r.Min + e.intn(r.Max-r.Min+1)
}

func applyTraitModifiers(delta int, s Sentiment, msg string, traits domain.PersonaTraits) int {
	if delta < 0 && traits.HasMarker(domain.MarkerSensitive) {
		delta -= sensitivityPenalty
	}
	if delta < 0 && traits.HasMarker(domain.MarkerTolerant) {
		delta /= 2
	}
	if containsAny(msg, sharedActivityKeywords) {
		delta += sharedActivityBonus
	}
	return delta
}

// dampenExtremes castiga mas en afinidad baja y frena la subida en afinidad alta.
func dampenExtremes(delta, affinity int) int {
	switch {
	case affinity <= lowAffinityThreshold && delta < 0:
		return delta - lowAffinityPenalty
	case affinity >= highAffinityThreshold && delta > 0:
		return int(math.Floor(float64(delta) * highAffinityFactor))
	default:
		return delta
	}
}

func clampDelta(delta int) int {
	if delta > deltaEnvelope {
		return deltaEnvelope
	}
	if delta < -deltaEnvelope {
		return -deltaEnvelope
	}
	return delta
}

func (e *TraitRuleEngine) reasonFor(delta int) string {
	for _, b := range reasonBuckets {
		if delta >= b.min && delta <= b.max {
			return e.pick(b.phrases)
		}
	}
	return ""
}

// CheckSpecialEvent: ruptura con afinidad <= 10; enojo si hay >=3 deltas negativos en los ultimos 6 mensajes y el personaje es sensible.
func (e *TraitRuleEngine) CheckSpecialEvent(traits domain.PersonaTraits, affinity int, recent []domain.Message) *SpecialEvent {
	if affinity <= breakupThreshold {
		ev := EventBreakup
		return &ev
	}
	if !traits.HasMarker(domain.MarkerSensitive) {
		return nil
	}
	window := recent
	if len(window) > angryWindow {
		window = window[len(window)-angryWindow:]
	}
	negatives := 0
	for _, m := range window {
		if m.AffinityDelta != nil && *m.AffinityDelta < 0 {
			negatives++
		}
	}
	if negatives >= angryNegativeMin {
		ev := EventAngry
		return &ev
	}
	return nil
}

func (e *TraitRuleEngine) SpecialEventReply(event SpecialEvent, traits domain.PersonaTraits) string {
	byStyle := specialEventReplies[event]
	phrases := byStyle[traits.Profile().Style]
	if len(phrases) == 0 {
		phrases = byStyle[domain.StyleNormal]
	}
	if len(phrases) == 0 {
		return ""
	}
	return e.pick(phrases)
}

func (e *TraitRuleEngine) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[e.intn(len(list))]
}

func (e *TraitRuleEngine) intn(n int) int {
	if n <= 1 || e.rand == nil {
		return 0
	}
	return e.rand.Intn(n)
}

func lastPersonaContent(history []domain.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == domain.SenderPersona {
			return history[i].Content
		}
	}
	return ""
}
