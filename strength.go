package authflow

// strengthTable maps a lookup index to a tier. Five entries for the
// five-segment display scale.
var strengthTable = [5]StrengthTier{
	StrengthVeryWeak,
	StrengthWeak,
	StrengthFair,
	StrengthGood,
	StrengthStrong,
}

// ScorePassword maps a password to a discrete strength tier. The score sums
// four independent predicates (length ≥ 8, uppercase, digit, symbol) and
// the tier is strengthTable[max(0, score-1)]; scores 0 and 1 both land on
// the "very weak" entry. An empty password hides the meter entirely.
func ScorePassword(password string) StrengthState {
	if password == "" {
		return StrengthState{}
	}

	score := 0
	if len([]rune(password)) >= 8 {
		score++
	}
	if hasUppercase(password) {
		score++
	}
	if hasDigit(password) {
		score++
	}
	if hasSymbol(password) {
		score++
	}

	idx := score - 1
	if idx < 0 {
		idx = 0
	}
	return StrengthState{Visible: true, Tier: strengthTable[idx], Score: score}
}
