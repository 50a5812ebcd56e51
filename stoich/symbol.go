package stoich

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Symbol is one of the supported elements.
type Symbol uint8

const (
	Al Symbol = iota
	Ce
	Si
	Ni
	Mg

	numSymbols
)

var symbolNames = [numSymbols]string{
	Al: "Al",
	Ce: "Ce",
	Si: "Si",
	Ni: "Ni",
	Mg: "Mg",
}

// DefaultDisplayOrder puts Al first and the rare earth last.
var DefaultDisplayOrder = []Symbol{Al, Ni, Si, Mg, Ce}

// Symbols returns all supported elements in declaration order.
func Symbols() []Symbol {
	s := make([]Symbol, numSymbols)
	for i := range s {
		s[i] = Symbol(i)
	}
	return s
}

func (s Symbol) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Symbol(%d)", uint8(s))
	}
	return symbolNames[s]
}

func (s Symbol) Valid() bool {
	return s < numSymbols
}

func (s Symbol) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrLookup, s)
	}
	return []byte(symbolNames[s]), nil
}

func (s *Symbol) UnmarshalText(b []byte) error {
	sym, err := ParseSymbol(string(b))
	if err != nil {
		return err
	}
	*s = sym
	return nil
}

// ParseSymbol accepts a chemical symbol in any letter case, e.g. "al" or "AL".
func ParseSymbol(str string) (Symbol, error) {
	// Casers keep state, so each call gets its own.
	name := cases.Title(language.Und).String(strings.TrimSpace(str))
	for i, n := range symbolNames {
		if n == name {
			return Symbol(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported element %q", ErrLookup, str)
}

// ParseSymbols parses a comma separated element list, dropping duplicates
// but preserving the order they were first given in.
func ParseSymbols(list string) ([]Symbol, error) {
	var (
		out  []Symbol
		bad  []string
		seen [numSymbols]bool
	)
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		s, err := ParseSymbol(f)
		if err != nil {
			bad = append(bad, f)
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("%w: unsupported symbol(s) %s", ErrLookup, strings.Join(bad, ", "))
	}
	return out, nil
}

// sortedKeys returns the keys of m in declaration order.
func sortedKeys[V any](m map[Symbol]V) []Symbol {
	keys := make([]Symbol, 0, len(m))
	for i := Symbol(0); i < numSymbols; i++ {
		if _, ok := m[i]; ok {
			keys = append(keys, i)
		}
	}
	// out of range symbols sort last so lookups can still reject them
	if n := len(keys); n < len(m) {
		for k := range m {
			if !k.Valid() {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys[n:])
	}
	return keys
}
