package costing

import (
	"sort"
	"strings"

	"seasonplan/entities"
)

type Tier string

const (
	TierCore      Tier = "core"
	TierSelective Tier = "selective"
	TierTrial     Tier = "trial"
)

// Coverage thresholds in percent of field acres. Both bounds are inclusive on the
// lower side: 90 is core, 50 is selective.
const (
	CoreThreshold      = 90.0
	SelectiveThreshold = 50.0
)

func AutoTier(acresPercentage float64) Tier {
	switch {
	case acresPercentage >= CoreThreshold:
		return TierCore
	case acresPercentage >= SelectiveThreshold:
		return TierSelective
	default:
		return TierTrial
	}
}

// ParseTier accepts the canonical tier names plus "building", the program label of selective.
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "core":
		return TierCore, true
	case "selective", "building":
		return TierSelective, true
	case "trial":
		return TierTrial, true
	}
	return "", false
}

// ResolveTier is the only place a tier is decided: a parseable TierOverride wins,
// otherwise the tier follows AcresPercentage.
func ResolveTier(app entities.Application) Tier {
	if app.TierOverride != nil {
		if t, ok := ParseTier(*app.TierOverride); ok {
			return t
		}
	}
	return AutoTier(clampPercent(app.AcresPercentage))
}

func (t Tier) Label() string {
	switch t {
	case TierCore:
		return "Core"
	case TierSelective:
		return "Selective"
	case TierTrial:
		return "Trial"
	}
	return string(t)
}

// ProgramLabel is the label used on program views, where selective reads "Building".
func (t Tier) ProgramLabel() string {
	if t == TierSelective {
		return "Building"
	}
	return t.Label()
}

func (t Tier) rank() int {
	switch t {
	case TierCore:
		return 0
	case TierSelective:
		return 1
	case TierTrial:
		return 2
	}
	return 3
}

type groupKey struct {
	pct  float64
	tier Tier
}

// GroupByCoverage groups lines sharing acres-percentage and tier, highest coverage first.
func GroupByCoverage(lines []ApplicationLine, totalAcres float64) []CoverageGroup {
	index := map[groupKey]int{}
	var groups []CoverageGroup
	for _, l := range lines {
		k := groupKey{pct: l.AcresPercentage, tier: l.Tier}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, CoverageGroup{
				AcresPercentage: l.AcresPercentage,
				Tier:            l.Tier,
				TierLabel:       l.Tier.Label(),
				AcresTreated:    finite(totalAcres * l.AcresPercentage / 100),
			})
		}
		g := &groups[i]
		g.Applications = append(g.Applications, l)
		g.Nutrients = addNutrients(g.Nutrients, l.NutrientsPerTreatedAcre)
		g.CostPerTreatedAcre += l.CostPerTreatedAcre
		g.CostPerFieldAcre += l.CostPerFieldAcre
		g.TotalCost += l.TotalCost
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].AcresPercentage != groups[j].AcresPercentage {
			return groups[i].AcresPercentage > groups[j].AcresPercentage
		}
		return groups[i].Tier.rank() < groups[j].Tier.rank()
	})
	return groups
}

// PassPattern classifies a pass: uniform for no groups or a single full-coverage
// group, trial when every group is trial, selective otherwise.
func PassPattern(groups []CoverageGroup) Pattern {
	if len(groups) == 0 {
		return PatternUniform
	}
	if len(groups) == 1 && groups[0].AcresPercentage == 100 {
		return PatternUniform
	}
	for _, g := range groups {
		if g.Tier != TierTrial {
			return PatternSelective
		}
	}
	return PatternTrial
}

func addNutrients(a, b entities.Nutrients) entities.Nutrients {
	return entities.Nutrients{N: a.N + b.N, P: a.P + b.P, K: a.K + b.K, S: a.S + b.S}
}

func scaleNutrients(n entities.Nutrients, f float64) entities.Nutrients {
	return entities.Nutrients{N: finite(n.N * f), P: finite(n.P * f), K: finite(n.K * f), S: finite(n.S * f)}
}
