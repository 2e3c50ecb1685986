package core

import (
	"summarycube/criteria"
	"summarycube/cubeerr"
	"summarycube/storage"
)

// SelectDiffExpCube picks the differential expression cube indexed by the
// dimension the criteria constrain most narrowly relative to its
// cardinality. Fields that are dimensions of the default cube are filtered
// the same way on every cube and do not take part. Ties go to the field
// declared first; with no candidate the default cube is used.
func SelectDiffExpCube(snapshot *Snapshot, c *criteria.Criteria) (storage.Cube, string, error) {
	defaultCube, ok := snapshot.DiffExpCube(DefaultDiffExpKey)
	if !ok {
		return nil, "", cubeerr.SchemaMismatchf("snapshot %s has no default differential expression cube",
			snapshot.Version())
	}
	baseDims := defaultCube.Schema()

	bestKey := ""
	bestScore := 0.0
	for _, field := range c.Fields() {
		if len(field.Values) == 0 {
			continue
		}
		dim := snapshot.canonical(field.Name)
		if baseDims.HasDimension(dim) {
			continue
		}
		card, ok := snapshot.cardinality.Of(dim)
		if !ok || card <= 0 {
			return nil, "", cubeerr.SchemaMismatchf("no cardinality recorded for dimension %q", dim)
		}
		score := float64(len(field.Values)) / float64(card)
		if bestKey == "" || score < bestScore {
			bestKey, bestScore = dim, score
		}
	}

	if bestKey == "" {
		return defaultCube, DefaultDiffExpKey, nil
	}
	cube, ok := snapshot.DiffExpCube(bestKey)
	if !ok {
		return nil, "", cubeerr.SchemaMismatchf("no differential expression cube is indexed by %q", bestKey)
	}
	return cube, bestKey, nil
}
