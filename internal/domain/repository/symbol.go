package repository

import "strings"

// SymbolNormalizer qualifies raw symbols with a market suffix.
type SymbolNormalizer struct {
	DefaultSuffix string
	KnownSuffixes []string
}

// Normalize upper-cases the symbol and appends DefaultSuffix when no known suffix is present.
// Index (^GSPC), FX (EURUSD=X) and pair (BTC-USD) notations are returned as-is.
func (n SymbolNormalizer) Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || n.DefaultSuffix == "" {
		return s
	}
	if strings.HasPrefix(s, "^") || strings.ContainsAny(s, "=-") {
		return s
	}
	for _, suf := range n.KnownSuffixes {
		if suf != "" && strings.HasSuffix(s, strings.ToUpper(suf)) {
			return s
		}
	}
	return s + strings.ToUpper(n.DefaultSuffix)
}
