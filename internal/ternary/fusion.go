package ternary

// weightTableSize covers variances in [0, 1] at 0.01 resolution.
const weightTableSize = 101

// WeightTable maps measurement variance to a fusion weight w = 1/(1+v).
// Built once at startup and passed by reference; there is no package-level
// instance and no load-time initialization.
type WeightTable struct {
	weights [weightTableSize]float64
}

func NewWeightTable() *WeightTable {
	t := &WeightTable{}
	for i := 0; i < weightTableSize; i++ {
		variance := float64(i) / float64(weightTableSize-1)
		t.weights[i] = 1.0 / (1.0 + variance)
	}
	return t
}

// Weight returns the tabulated weight for a variance, saturating above 1.
func (t *WeightTable) Weight(variance float64) float64 {
	idx := int(variance * float64(weightTableSize-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= weightTableSize {
		idx = weightTableSize - 1
	}
	return t.weights[idx]
}

// FusionResult is the outcome of variance-weighted fusion.
type FusionResult struct {
	Fused        Value
	Confidence   float64
	MeanVariance float64
}

// Fuse combines readings into a consensus ternary value. Each vote is
// weighted by confidence and inverse variance; the aggregate confidence is
// the probabilistic OR 1 - prod(1 - c_i). Unlike AggregateAND this tolerates
// individual failures, so it is suited to redundant same-quantity sensors
// rather than the control loop's all-must-agree suite.
func (t *WeightTable) Fuse(readings []Reading) FusionResult {
	if len(readings) == 0 {
		return FusionResult{Fused: Unknown}
	}

	weightedSum := 0.0
	weightSum := 0.0
	totalVariance := 0.0
	orComplement := 1.0

	for i := range readings {
		combined := t.Weight(readings[i].Variance) * readings[i].Confidence
		weightedSum += float64(readings[i].Value) * combined
		weightSum += readings[i].Confidence
		totalVariance += readings[i].Variance
		orComplement *= 1.0 - readings[i].Confidence
	}

	consensus := 0.0
	if weightSum > 0 {
		consensus = weightedSum / weightSum
	}

	fused := Unknown
	switch {
	case consensus > 0.5:
		fused = True
	case consensus < -0.5:
		fused = False
	}

	return FusionResult{
		Fused:        fused,
		Confidence:   1.0 - orComplement,
		MeanVariance: totalVariance / float64(len(readings)),
	}
}
