package enums

// RuleType distinguishes accrual policies.
type RuleType string

const (
	// RuleTypePerKg awards value points per kilogram of CO2 reduced.
	RuleTypePerKg RuleType = "per_kg"
	// RuleTypeRankBonus awards a flat bonus based on leaderboard position.
	RuleTypeRankBonus RuleType = "rank_bonus"
)

func (t RuleType) IsValid() bool {
	return t == RuleTypePerKg || t == RuleTypeRankBonus
}

func ParseRuleType(value string) (RuleType, error) {
	t := RuleType(value)
	if !t.IsValid() {
		return "", errInvalidEnum("rule type", value)
	}
	return t, nil
}
