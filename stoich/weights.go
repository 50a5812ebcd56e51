package stoich

import "fmt"

// WeightTable maps elements to atomic weights in g/mol.
type WeightTable map[Symbol]float64

// StandardWeights returns the IUPAC conventional atomic weights of the
// supported elements. The returned table is a fresh copy.
func StandardWeights() WeightTable {
	return WeightTable{
		Al: 26.9815385,
		Ce: 140.116,
		Si: 28.085,
		Ni: 58.6934,
		Mg: 24.305,
	}
}

func (t WeightTable) Lookup(s Symbol) (float64, error) {
	w, ok := t[s]
	if !ok {
		return 0, fmt.Errorf("%w: no atomic weight for %s", ErrLookup, s)
	}
	if !(w > 0) {
		return 0, fmt.Errorf("%w: atomic weight of %s is %v", ErrLookup, s, w)
	}
	return w, nil
}
