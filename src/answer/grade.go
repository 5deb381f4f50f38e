package answer

// Match classifies how a typed answer relates to the expected one.
type Match int

const (
	// Wrong answers share no spelling variant with the expected answer.
	Wrong Match = iota
	// Variant answers are accepted through case, spacing or umlaut folding.
	Variant
	// Exact answers equal the expected answer after trimming and spacing.
	Exact
)

func (m Match) String() string {
	switch m {
	case Exact:
		return "exact"
	case Variant:
		return "variant"
	}
	return "wrong"
}

// Correct reports whether the answer counts as right.
func (m Match) Correct() bool {
	return m != Wrong
}

// Grade compares a typed answer with the expected answer.
func Grade(userAnswer, expected string) Match {
	if clean(userAnswer) == clean(expected) {
		return Exact
	}
	if IsEquivalent(userAnswer, expected) {
		return Variant
	}
	return Wrong
}
