package core

import (
	"github.com/stretchr/testify/require"
	"summarycube/criteria"
	"summarycube/frame"
	"summarycube/storage"
	"testing"
)

const (
	human = "NCBITaxon:9606"
	mouse = "NCBITaxon:10090"
	lung  = "UBERON:0002048"
	heart = "UBERON:0000948"
	tcell = "CL:0000084"
	bcell = "CL:0000236"
)

var (
	expressionSummarySchema = storage.NewSchema("es_v1",
		[]string{"gene_ontology_term_id", "tissue_ontology_term_id", "organism_ontology_term_id"},
		storage.Categorical("cell_type_ontology_term_id"),
		storage.Categorical("dataset_id"),
		storage.Categorical("disease_ontology_term_id"),
		storage.Categorical("sex_ontology_term_id"),
		storage.Numeric("nnz"),
		storage.Numeric("sum"),
	)

	cellCountsSchema = storage.NewSchema("cc_v1",
		[]string{"tissue_ontology_term_id", "organism_ontology_term_id"},
		storage.Categorical("cell_type_ontology_term_id"),
		storage.Categorical("dataset_id"),
		storage.Categorical("disease_ontology_term_id"),
		storage.Numeric("n_cells"),
	)

	markerGenesSchema = storage.NewSchema("mg_v1",
		[]string{"tissue_ontology_term_id", "organism_ontology_term_id", "cell_type_ontology_term_id"},
		storage.Categorical("gene_ontology_term_id"),
		storage.Numeric("specificity"),
		storage.Numeric("marker_score"),
	)

	diffExpDefaultSchema = storage.NewSchema("de_default",
		[]string{"cell_type_ontology_term_id", "organism_ontology_term_id"},
		storage.Categorical("tissue_ontology_term_id"),
		storage.Categorical("publication_citation"),
		storage.Categorical("disease_ontology_term_id"),
		storage.Categorical("self_reported_ethnicity_ontology_term_id"),
		storage.Categorical("sex_ontology_term_id"),
		storage.Numeric("sum"),
	)

	diffExpDiseaseSchema = storage.NewSchema("de_disease",
		[]string{"disease_ontology_term_id", "cell_type_ontology_term_id", "organism_ontology_term_id"},
		storage.Categorical("tissue_ontology_term_id"),
		storage.Categorical("publication_citation"),
		storage.Categorical("self_reported_ethnicity_ontology_term_id"),
		storage.Categorical("sex_ontology_term_id"),
		storage.Numeric("sum"),
	)

	diffExpEthnicitySchema = storage.NewSchema("de_ethnicity",
		[]string{"self_reported_ethnicity_ontology_term_id", "cell_type_ontology_term_id", "organism_ontology_term_id"},
		storage.Categorical("tissue_ontology_term_id"),
		storage.Categorical("publication_citation"),
		storage.Categorical("disease_ontology_term_id"),
		storage.Categorical("sex_ontology_term_id"),
		storage.Numeric("sum"),
	)
)

func str(s string) frame.Value {
	return frame.Str(s)
}

func num(f float64) frame.Value {
	return frame.Float(f)
}

func expressionSummaryRows() []storage.Row {
	return []storage.Row{
		{Dims: []string{"ENSG1", lung, human}, Attrs: []frame.Value{str(tcell), str("ds1"), str("PATO:normal"), str("male"), num(3), num(7.5)}},
		{Dims: []string{"ENSG1", lung, human}, Attrs: []frame.Value{str(bcell), str("ds2"), str("MONDO:covid"), str("female"), num(1), num(2)}},
		{Dims: []string{"ENSG2", lung, human}, Attrs: []frame.Value{str(tcell), str("ds1"), str("PATO:normal"), str("male"), num(5), num(9)}},
		{Dims: []string{"ENSG1", heart, human}, Attrs: []frame.Value{str(tcell), str("ds3"), str("PATO:normal"), str("female"), num(2), num(4)}},
		{Dims: []string{"ENSG1", lung, mouse}, Attrs: []frame.Value{str(tcell), str("ds4"), str("PATO:normal"), str("male"), num(8), num(8)}},
	}
}

func cellCountRows() []storage.Row {
	return []storage.Row{
		{Dims: []string{lung, human}, Attrs: []frame.Value{str(tcell), str("ds1"), str("PATO:normal"), num(100)}},
		{Dims: []string{lung, human}, Attrs: []frame.Value{str(bcell), str("ds2"), str("MONDO:covid"), num(40)}},
		{Dims: []string{heart, human}, Attrs: []frame.Value{str(tcell), str("ds3"), str("PATO:normal"), num(25)}},
		{Dims: []string{lung, mouse}, Attrs: []frame.Value{str(tcell), str("ds4"), str("PATO:normal"), num(60)}},
		{Dims: []string{heart, human}, Attrs: []frame.Value{str(bcell), str("ds3"), str("PATO:normal"), num(5)}},
	}
}

func markerGeneRows() []storage.Row {
	return []storage.Row{
		{Dims: []string{lung, human, tcell}, Attrs: []frame.Value{str("ENSG1"), num(0.2), num(0.9)}},
		{Dims: []string{lung, human, tcell}, Attrs: []frame.Value{str("ENSG2"), num(0.3), frame.Null()}},
		{Dims: []string{lung, human, tcell}, Attrs: []frame.Value{str("ENSG3"), num(0.4), num(0.5)}},
		{Dims: []string{lung, human, tcell}, Attrs: []frame.Value{str("ENSG4"), frame.Null(), num(0.7)}},
		{Dims: []string{lung, human, bcell}, Attrs: []frame.Value{str("ENSG5"), num(0.1), num(0.99)}},
	}
}

func diffExpRows() []storage.Row {
	return []storage.Row{
		{Dims: []string{tcell, human}, Attrs: []frame.Value{str(lung), str("Smith 2020"), str("PATO:normal"), str("HANCESTRO:1"), str("male"), num(10)}},
		{Dims: []string{bcell, human}, Attrs: []frame.Value{str(lung), str("Jones 2021"), str("MONDO:covid"), str("HANCESTRO:2"), str("female"), num(20)}},
	}
}

func cellCountsTable() *frame.Frame {
	table := frame.New("organism_ontology_term_id", "tissue_ontology_term_id", "cell_type_ontology_term_id",
		"dataset_id", "n_cells")
	for _, row := range cellCountRows() {
		table.AppendRow(str(row.Dims[1]), str(row.Dims[0]), row.Attrs[0], row.Attrs[1], row.Attrs[3])
	}
	return table.SetNumeric(CellCountColumn)
}

type fixture struct {
	backend     *storage.InMemoryBackend
	cubes       map[string]storage.Cube
	diffExp     map[string]storage.Cube
	cardinality Cardinality
}

func newFixture(t *testing.T, chunkRows int) *fixture {
	backend := storage.NewInMemoryBackend().SetChunkRows(chunkRows)
	create := func(schema *storage.Schema, rows []storage.Row) storage.Cube {
		require.NoError(t, backend.CreateCube(schema))
		require.NoError(t, backend.PutRows(schema.Name, rows))
		cube, err := backend.Cube(schema.Name)
		require.NoError(t, err)
		return cube
	}

	return &fixture{
		backend: backend,
		cubes: map[string]storage.Cube{
			ExpressionSummaryCube:        create(expressionSummarySchema, expressionSummaryRows()),
			ExpressionSummaryDefaultCube: create(storage.NewSchema("esd_v1", expressionSummarySchema.DimensionNames(), expressionSummarySchema.Attributes...), expressionSummaryRows()),
			CellCountsCube:               create(cellCountsSchema, cellCountRows()),
			MarkerGenesCube:              create(markerGenesSchema, markerGeneRows()),
		},
		diffExp: map[string]storage.Cube{
			DefaultDiffExpKey:                          create(diffExpDefaultSchema, diffExpRows()),
			"disease_ontology_term_id":                 create(diffExpDiseaseSchema, nil),
			"self_reported_ethnicity_ontology_term_id": create(diffExpEthnicitySchema, nil),
		},
		cardinality: Cardinality{
			"tissue_ontology_term_id":                  200,
			"publication_citation":                     100,
			"disease_ontology_term_id":                 50,
			"self_reported_ethnicity_ontology_term_id": 10,
			"sex_ontology_term_id":                     3,
		},
	}
}

func (fx *fixture) config() SnapshotConfig {
	return SnapshotConfig{
		Version:      "test",
		Cubes:        fx.cubes,
		DiffExpCubes: fx.diffExp,
		SideTables:   map[string]*frame.Frame{CellCountsTable: cellCountsTable()},
		Cardinality:  fx.cardinality,
	}
}

func newTestSnapshot(t *testing.T) *Snapshot {
	snapshot, err := NewSnapshot(newFixture(t, 2).config())
	require.NoError(t, err)
	return snapshot
}

func wmgCriteria(t *testing.T, values criteria.Values) *criteria.Criteria {
	c, err := criteria.New(criteria.WmgQueryV2, values)
	require.NoError(t, err)
	return c
}

func deCriteria(t *testing.T, values criteria.Values) *criteria.Criteria {
	c, err := criteria.New(criteria.DeQuery, values)
	require.NoError(t, err)
	return c
}

func column(t *testing.T, f *frame.Frame, name string) []interface{} {
	col, ok := f.Column(name)
	require.True(t, ok, name)
	out := make([]interface{}, len(col))
	for i, v := range col {
		out[i] = v.Interface()
	}
	return out
}
