package fluid

// Vote describes one candidate community from the perspective of the node
// being updated.
type Vote struct {
	Community int
	Density   float64 // 1/max(1,size), with the voter excluded from its own community
	Votes     int     // neighbors holding Community, plus one if it is the voter's label
	Total     int     // neighbors of the voter, plus one if the voter is labeled
}

// Scorer ranks candidate communities. Higher scores win.
type Scorer interface {
	Score(v Vote) float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(Vote) float64

// Score calls f(v).
func (f ScorerFunc) Score(v Vote) float64 { return f(v) }

// DensityScorer scores a community by its density only (FluidC).
var DensityScorer Scorer = ScorerFunc(func(v Vote) float64 {
	return v.Density
})

// AgreementScorer weights density by the share of the voter's neighborhood
// that holds the community (FluidC+). With no votes at all it degrades to
// DensityScorer.
var AgreementScorer Scorer = ScorerFunc(func(v Vote) float64 {
	if v.Total == 0 {
		return v.Density
	}
	return v.Density * float64(v.Votes) / float64(v.Total)
})

// ScorerFor returns the scorer implementing variant.
func ScorerFor(variant Variant) Scorer {
	if variant == VariantFluidCPlus {
		return AgreementScorer
	}
	return DensityScorer
}
