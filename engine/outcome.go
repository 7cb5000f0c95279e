package engine

// Outcome is a round result from the player's point of view. The numeric
// values are the wire protocol's result codes and must not be reordered.
type Outcome uint8

const (
	OutcomeNotOver Outcome = 0
	OutcomePush    Outcome = 1
	OutcomeLoss    Outcome = 2
	OutcomeWin     Outcome = 3
)

// String returns a short human label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotOver:
		return "not over"
	case OutcomePush:
		return "push"
	case OutcomeLoss:
		return "loss"
	case OutcomeWin:
		return "win"
	}
	return "unknown"
}

// Resolve compares a finished player hand against a finished dealer hand.
// Exactly one of win/loss/push is returned for every input:
//
//   - player bust → loss, regardless of the dealer
//   - player natural, dealer not natural → win
//   - both natural → push
//   - dealer bust → win
//   - otherwise higher total wins; equal totals push
func Resolve(player, dealer Hand) Outcome {
	if player.IsBust() {
		return OutcomeLoss
	}
	if player.IsNatural() {
		if dealer.IsNatural() {
			return OutcomePush
		}
		return OutcomeWin
	}
	if dealer.IsBust() {
		return OutcomeWin
	}
	p, d := player.Total(), dealer.Total()
	switch {
	case p > d:
		return OutcomeWin
	case p < d:
		return OutcomeLoss
	default:
		return OutcomePush
	}
}

// Settle returns the chips credited back to the player after a round with an
// escrowed bet (the bet was already deducted when placed):
//
//   - win with a natural pays 3:2 → stake back plus 1.5× the bet
//   - win pays 1:1 → stake back plus the bet
//   - push refunds the stake
//   - loss forfeits the escrow
//
// naturalMultiplier is the blackjack payout factor (1.5 for 3:2 tables).
func Settle(out Outcome, bet int, natural bool, naturalMultiplier float64) int {
	switch out {
	case OutcomeWin:
		if natural {
			return int(float64(bet)*naturalMultiplier) + bet
		}
		return bet * 2
	case OutcomePush:
		return bet
	default:
		return 0
	}
}
