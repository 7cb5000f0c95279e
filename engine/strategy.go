package engine

// Decision is one player action during a turn.
type Decision uint8

const (
	DecisionHit Decision = iota
	DecisionStand
	DecisionDouble
)

func (d Decision) String() string {
	switch d {
	case DecisionHit:
		return "hit"
	case DecisionStand:
		return "stand"
	case DecisionDouble:
		return "double down"
	}
	return "unknown"
}

// Strategy is a basic-strategy decision table, parameterized so the
// thresholds can be pinned by tests or tuned without touching the decision
// logic. It covers hard totals, soft totals and the dealer up-card; it does
// not model pair splitting (the table has no split action).
type Strategy struct {
	AlwaysHitMax    int // hit any total at or below this (8)
	HardStandMin    int // stand on hard totals at or above this (17)
	StiffMin        int // hard StiffMin..HardStandMin-1 depend on the up-card (13)
	StiffDealerMax  int // stiff hands stand when dealer shows at most this (6)
	TwelveDealerLo  int // hard 12 stands when dealer shows within [lo, hi] (4)
	TwelveDealerHi  int // (6)
	SoftStandMin    int // stand on soft totals at or above this (19)
	SoftPivot       int // soft total that depends on the up-card (18)
	SoftPivotDealer int // the pivot stands when dealer shows at most this (8)
}

// DefaultStrategy returns the table the bot plays by default. It is a
// simplified approximation of canonical basic strategy: no split line, no
// strategy-table double downs.
func DefaultStrategy() Strategy {
	return Strategy{
		AlwaysHitMax:    8,
		HardStandMin:    17,
		StiffMin:        13,
		StiffDealerMax:  6,
		TwelveDealerLo:  4,
		TwelveDealerHi:  6,
		SoftStandMin:    19,
		SoftPivot:       18,
		SoftPivotDealer: 8,
	}
}

// Decide returns the bot's action for the given hand against the dealer's
// visible card. Only Hit and Stand are ever returned; double-down is a
// chip-management choice left to the caller.
func (s Strategy) Decide(hand Hand, dealerUp Card) Decision {
	total := hand.Total()
	up := dealerUp.Value()

	if total >= 21 {
		return DecisionStand
	}
	if total <= s.AlwaysHitMax {
		return DecisionHit
	}

	if hand.IsSoft() {
		switch {
		case total >= s.SoftStandMin:
			return DecisionStand
		case total == s.SoftPivot && up <= s.SoftPivotDealer:
			return DecisionStand
		default:
			return DecisionHit
		}
	}

	switch {
	case total >= s.HardStandMin:
		return DecisionStand
	case total >= s.StiffMin:
		if up <= s.StiffDealerMax {
			return DecisionStand
		}
		return DecisionHit
	case total == 12:
		if up >= s.TwelveDealerLo && up <= s.TwelveDealerHi {
			return DecisionStand
		}
		return DecisionHit
	default: // 9, 10, 11
		return DecisionHit
	}
}
