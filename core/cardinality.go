package core

import (
	"summarycube/storage"
)

// Cardinality maps a canonical dimension name to the number of distinct
// values it takes across the corpus.
type Cardinality map[string]int

func (card Cardinality) Of(dim string) (int, bool) {
	n, ok := card[dim]
	return n, ok
}

func (card Cardinality) Copy() Cardinality {
	out := make(Cardinality, len(card))
	for k, v := range card {
		out[k] = v
	}
	return out
}

// ComputeCardinality counts the distinct values of every dimension across
// the given cubes.
func ComputeCardinality(cubes ...storage.Cube) (Cardinality, error) {
	distinct := make(map[string]map[string]struct{})
	for _, cube := range cubes {
		for _, dim := range cube.Schema().DimensionNames() {
			values, err := distinctValues(cube, dim)
			if err != nil {
				return nil, err
			}
			set, ok := distinct[dim]
			if !ok {
				set = make(map[string]struct{})
				distinct[dim] = set
			}
			for _, v := range values {
				set[v] = struct{}{}
			}
		}
	}

	card := make(Cardinality, len(distinct))
	for dim, set := range distinct {
		card[dim] = len(set)
	}
	return card, nil
}
