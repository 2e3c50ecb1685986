package core

import (
	"summarycube/cubeerr"
	"summarycube/frame"
	"summarycube/tree"
)

// Ranking methods accepted by RetrieveTopNMarkers.
const (
	TTest     = "ttest"
	BinomTest = "binomtest"
)

const (
	GeneColumn        = "gene_ontology_term_id"
	SpecificityColumn = "specificity"
	MarkerScoreColumn = "marker_score"
)

type MarkerRecord struct {
	GeneOntologyTermID string   `json:"gene_ontology_term_id"`
	Specificity        *float64 `json:"specificity"`
	MarkerScore        float64  `json:"marker_score"`
}

// RetrieveTopNMarkers ranks a marker gene result by marker score, highest
// first. Rows without a score are dropped. n > 0 keeps the n best rows;
// otherwise every scored row is returned. Equal scores keep input order.
func RetrieveTopNMarkers(result *frame.Frame, test string, n int) ([]MarkerRecord, error) {
	switch test {
	case TTest, "":
	case BinomTest:
		return nil, cubeerr.Unsupportedf("binomtest is not supported anymore")
	default:
		return nil, cubeerr.Unsupportedf("unknown marker ranking method %q", test)
	}

	genes, ok := result.Column(GeneColumn)
	if !ok {
		return nil, cubeerr.SchemaMismatchf("marker result has no %s column", GeneColumn)
	}
	specificity, ok := result.Column(SpecificityColumn)
	if !ok {
		return nil, cubeerr.SchemaMismatchf("marker result has no %s column", SpecificityColumn)
	}
	scores, ok := result.Column(MarkerScoreColumn)
	if !ok {
		return nil, cubeerr.SchemaMismatchf("marker result has no %s column", MarkerScoreColumn)
	}

	limit := n
	if limit <= 0 {
		limit = result.Len()
	}
	top := tree.NewTopN(limit)
	for i := range scores {
		if scores[i].IsNull() {
			continue
		}
		score, ok := scores[i].Float()
		if !ok {
			return nil, cubeerr.SchemaMismatchf("marker score %q is not numeric", scores[i].String())
		}
		record := MarkerRecord{GeneOntologyTermID: genes[i].Str(), MarkerScore: score}
		if s, ok := specificity[i].Float(); ok {
			record.Specificity = &s
		}
		top.Offer(score, record)
	}

	items := top.Sorted()
	records := make([]MarkerRecord, len(items))
	for i, item := range items {
		records[i] = item.Value.(MarkerRecord)
	}
	return records, nil
}
