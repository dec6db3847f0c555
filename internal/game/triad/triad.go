// Package triad holds the card identity model and the triad arithmetic.
//
// Three cards form a triad when, for each of the four attributes, their
// digits are all equal or all different. For any two identities there is
// exactly one identity that completes a triad with them.
package triad

// SolutionFor returns the identity that completes a triad with a and b.
// For each attribute the digit is kept when a and b agree and is the
// remaining third value (6 - d1 - d2) when they differ.
// When a == b the result is a itself.
func SolutionFor(a, b Identity) Identity {
	code := 0
	for i := 0; i < NumAttributes; i++ {
		d1, d2 := a.Digit(i), b.Digit(i)
		d3 := d1
		if d1 != d2 {
			d3 = 6 - d1 - d2
		}
		code += d3 * attrWeight[i]
	}
	return Identity(code)
}

// IsTriad reports whether a, b and c form a triad.
func IsTriad(a, b, c Identity) bool {
	return SolutionFor(a, b) == c
}

// Pair is an unordered pair of identities, usable as a map key.
type Pair struct {
	lo, hi Identity
}

// NewPair normalizes the order of a and b.
func NewPair(a, b Identity) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{lo: a, hi: b}
}

// Members returns both identities, lower code first.
func (p Pair) Members() (Identity, Identity) {
	return p.lo, p.hi
}

// Contains reports whether id is one of the pair's members.
func (p Pair) Contains(id Identity) bool {
	return p.lo == id || p.hi == id
}

// Solution is SolutionFor applied to the pair.
func (p Pair) Solution() Identity {
	return SolutionFor(p.lo, p.hi)
}

func (p Pair) String() string {
	return "{" + p.lo.String() + "," + p.hi.String() + "}"
}

// FindTriads returns every triad contained in cards, each as three
// identities in the order they appear in cards.
func FindTriads(cards []Identity) [][3]Identity {
	var out [][3]Identity
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			want := SolutionFor(cards[i], cards[j])
			for k := j + 1; k < len(cards); k++ {
				if cards[k] == want {
					out = append(out, [3]Identity{cards[i], cards[j], cards[k]})
				}
			}
		}
	}
	return out
}
