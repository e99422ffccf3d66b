package domain

import "time"

const (
	MinAffinity = 0
	MaxAffinity = 100

	// peakRandomOdds: 1 de cada peakRandomOdds actualizaciones se destaca al azar.
	peakRandomOdds   = 10
	peakMinMagnitude = 5
)

// AffinityThresholds son los cortes narrativos del vinculo.
var AffinityThresholds = []int{20, 40, 60, 80}

// RandSource es la fuente de azar inyectable (*rand.Rand la satisface).
type RandSource interface {
	Intn(n int) int
}

type AffinityPoint struct {
	Round     int       `json:"round"`
	Value     int       `json:"value"`
	MessageID string    `json:"message_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Delta     int       `json:"delta"`
	IsPeak    bool      `json:"is_peak,omitempty"`
}

func ClampAffinity(v int) int {
	switch {
	case v < MinAffinity:
		return MinAffinity
	case v > MaxAffinity:
		return MaxAffinity
	default:
		return v
	}
}

// AffinityTimeline es la secuencia append-only de puntos; Append devuelve una copia nueva.
type AffinityTimeline struct {
	points []AffinityPoint
}

// NewAffinityTimeline crea la linea con el punto semilla (ronda 0).
func NewAffinityTimeline(seed int, at time.Time) AffinityTimeline {
	return AffinityTimeline{points: []AffinityPoint{{
		Round:     0,
		Value:     ClampAffinity(seed),
		CreatedAt: at,
	}}}
}

// TimelineFromPoints reconstruye la linea desde puntos persistidos.
func TimelineFromPoints(points []AffinityPoint) AffinityTimeline {
	cp := make([]AffinityPoint, len(points))
	copy(cp, points)
	return AffinityTimeline{points: cp}
}

func (t AffinityTimeline) Len() int {
	return len(t.points)
}

// Last devuelve el ultimo punto; una linea vacia se comporta como semilla en 0.
func (t AffinityTimeline) Last() AffinityPoint {
	if len(t.points) == 0 {
		return AffinityPoint{Round: -1}
	}
	return t.points[len(t.points)-1]
}

func (t AffinityTimeline) Points() []AffinityPoint {
	cp := make([]AffinityPoint, len(t.points))
	copy(cp, t.points)
	return cp
}

// Append calcula el nuevo valor con clamp a [0,100] y asigna ronda = ultima + 1.
// Solo los puntos pico conservan el motivo.
func (t AffinityTimeline) Append(delta int, reason, messageID string, isPeak bool, at time.Time) (AffinityTimeline, AffinityPoint) {
	last := t.Last()
	if !isPeak {
		reason = ""
	}
	p := AffinityPoint{
		Round:     last.Round + 1,
		Value:     ClampAffinity(last.Value + delta),
		MessageID: messageID,
		Reason:    reason,
		CreatedAt: at,
		Delta:     delta,
		IsPeak:    isPeak,
	}
	next := make([]AffinityPoint, len(t.points), len(t.points)+1)
	copy(next, t.points)
	return AffinityTimeline{points: append(next, p)}, p
}

// PeakDetector decide si una actualizacion es narrativamente relevante.
type PeakDetector struct {
	Rand RandSource
}

// IsPeak: cruce de umbral en cualquier direccion, |delta| >= 5, o un sorteo 1-en-10.
func (d PeakDetector) IsPeak(oldValue, newValue, delta int) bool {
	if CrossesThreshold(oldValue, newValue) {
		return true
	}
	if delta >= peakMinMagnitude || -delta >= peakMinMagnitude {
		return true
	}
	if d.Rand == nil {
		return false
	}
	return d.Rand.Intn(peakRandomOdds) == 0
}

func CrossesThreshold(oldValue, newValue int) bool {
	lo, hi := oldValue, newValue
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, th := range AffinityThresholds {
		if lo < th && hi >= th {
			return true
		}
	}
	return false
}
