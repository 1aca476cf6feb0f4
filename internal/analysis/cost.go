package analysis

// EstimateCost prices a token count in USD given per-1000-token rates.
func EstimateCost(inputTokens, outputTokens int, inputPer1K, outputPer1K float64) float64 {
	return float64(inputTokens)/1000*inputPer1K + float64(outputTokens)/1000*outputPer1K
}
