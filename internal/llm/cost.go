package llm

const (
	DefaultInputRatePer1K  = 0.0015
	DefaultOutputRatePer1K = 0.002
)

// CostRates son tarifas por cada 1000 tokens; vienen de configuracion.
type CostRates struct {
	InputPer1K  float64
	OutputPer1K float64
}

func DefaultCostRates() CostRates {
	return CostRates{InputPer1K: DefaultInputRatePer1K, OutputPer1K: DefaultOutputRatePer1K}
}

// Estimate: prompt/1000*input + completion/1000*output.
func (r CostRates) Estimate(u Usage) float64 {
	return float64(u.PromptTokens)/1000*r.InputPer1K + float64(u.CompletionTokens)/1000*r.OutputPer1K
}
