package graph

// Canonical orders two identities so that the same two people always map to
// the same Pair regardless of argument order. Identities are compared as raw
// strings; no case or whitespace folding happens here.
func Canonical(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Has reports whether id is one of the pair's endpoints
func (p Pair) Has(id string) bool {
	return p.A == id || p.B == id
}

// IsLoop reports whether both endpoints are the same identity
func (p Pair) IsLoop() bool {
	return p.A == p.B
}

func pairLess(x, y Pair) bool {
	if x.A != y.A {
		return x.A < y.A
	}
	return x.B < y.B
}

func edgeLess(x, y Edge) bool {
	return pairLess(x.Pair, y.Pair)
}
