package scorer

// Tier is the classification assigned to a parsed score.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierMax      Tier = "max"
	TierOffScale Tier = "off-scale"

	// TierUnavailable marks a result for which no score could be obtained.
	TierUnavailable Tier = "unavailable"
)

// Band upper bounds. Each band includes its lower bound; 100 belongs to max.
const (
	lowUpper    = 20.0
	mediumUpper = 60.0
	highUpper   = 80.0
	maxUpper    = 100.0
)

// Classify maps a score onto its tier:
//
//	v < 20        low
//	20 <= v < 60  medium
//	60 <= v < 80  high
//	80 <= v <= 100 max
//	v > 100       off-scale
func Classify(v float64) Tier {
	switch {
	case v < lowUpper:
		return TierLow
	case v < mediumUpper:
		return TierMedium
	case v < highUpper:
		return TierHigh
	case v <= maxUpper:
		return TierMax
	default:
		return TierOffScale
	}
}

var tierLabels = map[Tier]string{
	TierLow:         "🟦 低糖",
	TierMedium:      "🟩 中糖",
	TierHigh:        "🟧 高糖",
	TierMax:         "🟥 糖王",
	TierOffScale:    "🌌 糖到没边",
	TierUnavailable: "⚠️ 无法获取",
}

// Label returns the display label for the tier.
func (t Tier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return string(t)
}
