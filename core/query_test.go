package core

import (
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"summarycube/criteria"
	"summarycube/cubeerr"
	"summarycube/frame"
	"summarycube/storage"
	"testing"
)

func TestExplain_Predicates(t *testing.T) {
	snapshot := newTestSnapshot(t)
	query := NewQuery(snapshot, nil)
	cube, err := snapshot.Cube(ExpressionSummaryCube)
	require.NoError(t, err)

	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
		criteria.DatasetIDs:             {"ds1"},
		criteria.DiseaseOntologyTermIDs: {"PATO:normal", "MONDO:covid"},
		criteria.SexOntologyTermIDs:     {},
	})
	plan, err := query.Explain(cube, c, "")
	require.NoError(t, err)

	assert.Equal(t, "es_v1", plan.Cube)
	assert.Equal(t,
		"dataset_id == val('ds1') and disease_ontology_term_id in ['PATO:normal', 'MONDO:covid']",
		plan.Condition())
	assert.Equal(t, [][]string{{"ENSG1"}, {}, {human}}, plan.DimSlices)
	assert.Nil(t, plan.Attrs)
	assert.Nil(t, plan.Dims)
	assert.Equal(t, append(expressionSummarySchema.DimensionNames(), expressionSummarySchema.AttributeNames()...),
		plan.Columns)
}

func TestExplain_EmptyStringIsNotAPredicate(t *testing.T) {
	snapshot := newTestSnapshot(t)
	cube, err := snapshot.Cube(ExpressionSummaryCube)
	require.NoError(t, err)

	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
		criteria.DatasetIDs:             {""},
	})
	plan, err := NewQuery(snapshot, nil).Explain(cube, c, "")
	require.NoError(t, err)
	assert.Nil(t, plan.Cond)
	assert.Equal(t, "", plan.Condition())
}

func TestExplain_Projection(t *testing.T) {
	snapshot := newTestSnapshot(t)
	params := NewCubeQueryParams(
		[]string{"dataset_id", "cell_type_ontology_term_id", "not_a_column"},
		[]string{"organism_ontology_term_id", "gene_ontology_term_id"},
	)
	query := NewQuery(snapshot, params)
	cube, err := snapshot.Cube(ExpressionSummaryCube)
	require.NoError(t, err)
	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
	})

	plan, err := query.Explain(cube, c, "sex_ontology_term_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"cell_type_ontology_term_id", "dataset_id", "sex_ontology_term_id", "nnz", "sum"}, plan.Attrs)
	assert.Equal(t, []string{"gene_ontology_term_id", "organism_ontology_term_id"}, plan.Dims)
	assert.Equal(t, []string{
		"gene_ontology_term_id", "organism_ontology_term_id",
		"cell_type_ontology_term_id", "dataset_id", "sex_ontology_term_id", "nnz", "sum",
	}, plan.Columns)

	// an already allowed compare dimension is not repeated
	plan, err = query.Explain(cube, c, "dataset_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"cell_type_ontology_term_id", "dataset_id", "nnz", "sum"}, plan.Attrs)

	// a compare dimension that is a cube dimension is projected as one
	plan, err = query.Explain(cube, c, "tissue_ontology_term_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"gene_ontology_term_id", "tissue_ontology_term_id", "organism_ontology_term_id"}, plan.Dims)

	_, err = query.Explain(cube, c, "nope")
	assert.True(t, cubeerr.IsSchemaMismatch(err))
}

func TestExplain_UnknownAttribute(t *testing.T) {
	snapshot := newTestSnapshot(t)
	cube, err := snapshot.Cube(ExpressionSummaryCube)
	require.NoError(t, err)

	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
		criteria.PublicationCitations:   {"Smith 2020"},
	})
	_, err = NewQuery(snapshot, nil).Explain(cube, c, "")
	assert.True(t, cubeerr.IsSchemaMismatch(err))
}

// Two rows that differ only in one attribute: a single value selects
// exactly the matching row.
func TestQuery_SingleValueFilter(t *testing.T) {
	backend := storage.NewInMemoryBackend()
	schema := storage.NewSchema("two_rows",
		[]string{"tissue_ontology_term_id", "organism_ontology_term_id"},
		storage.Categorical("dataset_id"),
		storage.Numeric("n_cells"),
	)
	require.NoError(t, backend.CreateCube(schema))
	require.NoError(t, backend.PutRows("two_rows", []storage.Row{
		{Dims: []string{lung, human}, Attrs: []frame.Value{str("X"), num(1)}},
		{Dims: []string{lung, human}, Attrs: []frame.Value{str("Y"), num(2)}},
	}))
	cube, err := backend.Cube("two_rows")
	require.NoError(t, err)

	snapshot, err := NewSnapshot(SnapshotConfig{Version: "two", Cubes: map[string]storage.Cube{CellCountsCube: cube}})
	require.NoError(t, err)
	query := NewQuery(snapshot, nil)

	filtered := func(datasets ...string) []interface{} {
		c := wmgCriteria(t, criteria.Values{
			criteria.GeneOntologyTermIDs:    {"ENSG1"},
			criteria.OrganismOntologyTermID: {human},
			criteria.DatasetIDs:             datasets,
		})
		result, err := query.CellCounts(c, "")
		require.NoError(t, err)
		return column(t, result, TotalCellCountColumn)
	}

	assert.Equal(t, []interface{}{1.0}, filtered("X"))
	assert.Equal(t, []interface{}{1.0, 2.0}, filtered("X", "Y"))
	assert.Equal(t, []interface{}{1.0, 2.0}, filtered())
	assert.Equal(t, []interface{}{}, filtered("Z"))
}

func TestExpressionSummary(t *testing.T) {
	snapshot := newTestSnapshot(t)
	query := NewQuery(snapshot, nil)

	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1", "ENSG2"},
		criteria.OrganismOntologyTermID: {human},
		criteria.TissueOntologyTermIDs:  {lung},
		criteria.SexOntologyTermIDs:     {"male"},
	})
	result, err := query.ExpressionSummary(c, "")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{7.5, 9.0}, column(t, result, "sum"))
	assert.Equal(t, []interface{}{"ENSG1", "ENSG2"}, column(t, result, "gene_ontology_term_id"))

	defaults, err := query.ExpressionSummaryDefault(c)
	require.NoError(t, err)
	assert.True(t, cmp.Equal(result.Records(), defaults.Records()))
}

func TestExpressionSummary_ChunkSizeDoesNotMatter(t *testing.T) {
	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
	})

	var results []*frame.Frame
	for _, chunkRows := range []int{1, 2, storage.DefaultChunkRows} {
		snapshot, err := NewSnapshot(newFixture(t, chunkRows).config())
		require.NoError(t, err)
		result, err := NewQuery(snapshot, nil).ExpressionSummary(c, "")
		require.NoError(t, err)
		results = append(results, result)
	}
	assert.Equal(t, 3, results[0].Len())
	for _, result := range results[1:] {
		assert.True(t, cmp.Equal(results[0].Records(), result.Records()))
	}
}

func TestExpressionSummary_EmptyResultKeepsColumns(t *testing.T) {
	snapshot := newTestSnapshot(t)
	params := NewCubeQueryParams([]string{"dataset_id"}, []string{"gene_ontology_term_id"})
	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG404"},
		criteria.OrganismOntologyTermID: {human},
	})
	result, err := NewQuery(snapshot, params).ExpressionSummary(c, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.Equal(t, []string{"gene_ontology_term_id", "dataset_id", "nnz", "sum"}, result.Columns())
}

func TestExpressionSummaryDiffExp(t *testing.T) {
	snapshot := newTestSnapshot(t)
	query := NewQuery(snapshot, nil)

	c := deCriteria(t, criteria.Values{
		criteria.OrganismOntologyTermID:  {human},
		criteria.CellTypeOntologyTermIDs: {tcell, bcell},
		criteria.PublicationCitations:    {"Jones 2021"},
	})
	// publication is scored but there is no cube for it
	_, err := query.ExpressionSummaryDiffExp(c)
	assert.True(t, cubeerr.IsSchemaMismatch(err))

	c = deCriteria(t, criteria.Values{
		criteria.OrganismOntologyTermID:  {human},
		criteria.CellTypeOntologyTermIDs: {bcell},
	})
	result, err := query.ExpressionSummaryDiffExp(c)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{20.0}, column(t, result, "sum"))

	c = deCriteria(t, criteria.Values{
		criteria.OrganismOntologyTermID: {human},
		criteria.DiseaseOntologyTermIDs: {"MONDO:covid"},
	})
	result, err = query.ExpressionSummaryDiffExp(c)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.Equal(t, diffExpDiseaseSchema.DimensionNames(), result.Columns()[:3])
}

func TestMarkerGenes(t *testing.T) {
	snapshot := newTestSnapshot(t)
	c, err := criteria.New(criteria.MarkerGeneQuery, criteria.Values{
		criteria.OrganismOntologyTermID: {human},
		criteria.TissueOntologyTermID:   {lung},
		criteria.CellTypeOntologyTermID: {tcell},
	})
	require.NoError(t, err)

	result, err := NewQuery(snapshot, nil).MarkerGenes(c)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"ENSG1", "ENSG2", "ENSG3", "ENSG4"}, column(t, result, GeneColumn))

	markers, err := RetrieveTopNMarkers(result, TTest, 2)
	require.NoError(t, err)
	require.Len(t, markers, 2)
	assert.Equal(t, "ENSG1", markers[0].GeneOntologyTermID)
	assert.Equal(t, "ENSG4", markers[1].GeneOntologyTermID)
	assert.Nil(t, markers[1].Specificity)
}

func TestCellCounts_IgnoresGenes(t *testing.T) {
	snapshot := newTestSnapshot(t)
	query := NewQuery(snapshot, nil)

	one := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
		criteria.TissueOntologyTermIDs:  {lung, heart},
	})
	other := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG2", "ENSG3", "ENSG4"},
		criteria.OrganismOntologyTermID: {human},
		criteria.TissueOntologyTermIDs:  {lung, heart},
	})

	a, err := query.CellCounts(one, "")
	require.NoError(t, err)
	b, err := query.CellCounts(other, "")
	require.NoError(t, err)
	assert.True(t, cmp.Equal(a.Records(), b.Records()))
	assert.Equal(t, []interface{}{100.0, 40.0, 25.0, 5.0}, column(t, a, TotalCellCountColumn))
	assert.False(t, a.HasColumn(CellCountColumn))
}

func TestCellCounts_CompareDimension(t *testing.T) {
	snapshot := newTestSnapshot(t)
	params := NewCubeQueryParams([]string{"cell_type_ontology_term_id"}, []string{"tissue_ontology_term_id"})
	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {mouse},
	})

	result, err := NewQuery(snapshot, params).CellCounts(c, "dataset_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"tissue_ontology_term_id", "cell_type_ontology_term_id", "dataset_id", TotalCellCountColumn},
		result.Columns())
	assert.Equal(t, []interface{}{"ds4"}, column(t, result, "dataset_id"))
}

func TestCellCounts_NoRowsKeepsNumericColumn(t *testing.T) {
	snapshot := newTestSnapshot(t)
	query := NewQuery(snapshot, nil)
	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {"NCBITaxon:0"},
	})

	result, err := query.CellCounts(c, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.True(t, result.IsNumeric(TotalCellCountColumn))
	assert.False(t, result.IsNumeric("dataset_id"))

	result, err = query.CellCountsDF(c)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.True(t, result.IsNumeric(TotalCellCountColumn))
}

func TestCellCountsDF(t *testing.T) {
	snapshot := newTestSnapshot(t)
	query := NewQuery(snapshot, nil)

	// disease is not a column of the side table and is ignored
	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
		criteria.TissueOntologyTermIDs:  {heart},
		criteria.DiseaseOntologyTermIDs: {"MONDO:nothing"},
	})
	result, err := query.CellCountsDF(c)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{25.0, 5.0}, column(t, result, TotalCellCountColumn))

	c = wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
		criteria.DatasetIDs:             {"ds1", "ds2"},
	})
	result, err = query.CellCountsDF(c)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"ds1", "ds2"}, column(t, result, "dataset_id"))

	empty, err := NewSnapshot(SnapshotConfig{Version: "empty"})
	require.NoError(t, err)
	_, err = NewQuery(empty, nil).CellCountsDF(c)
	assert.True(t, cubeerr.IsSchemaMismatch(err))
}

func TestListPrimaryFilterDimensionTermIDs(t *testing.T) {
	query := NewQuery(newTestSnapshot(t), nil)

	tissues, err := query.ListPrimaryFilterDimensionTermIDs("tissue_ontology_term_id")
	require.NoError(t, err)
	assert.Equal(t, []string{heart, lung}, tissues)

	organisms, err := query.ListPrimaryFilterDimensionTermIDs("organism_ontology_term_id")
	require.NoError(t, err)
	assert.Equal(t, []string{mouse, human}, organisms)

	_, err = query.ListPrimaryFilterDimensionTermIDs("dataset_id")
	assert.True(t, cubeerr.IsSchemaMismatch(err))
}

func TestListGroupedPrimaryFilterDimensionsTermIDs(t *testing.T) {
	query := NewQuery(newTestSnapshot(t), nil)

	grouped, err := query.ListGroupedPrimaryFilterDimensionsTermIDs("tissue_ontology_term_id", "organism_ontology_term_id")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		human: {lung, heart},
		mouse: {lung},
	}, grouped)

	_, err = query.ListGroupedPrimaryFilterDimensionsTermIDs("tissue_ontology_term_id", "tissue_ontology_term_id")
	assert.True(t, cubeerr.IsValidation(err))
}

func TestCachedBackendAgrees(t *testing.T) {
	fx := newFixture(t, 1)
	cached, err := storage.NewCachedBackend(fx.backend, storage.DefaultCacheConfig())
	require.NoError(t, err)
	defer cached.Close()

	cube, err := cached.Cube("cc_v1")
	require.NoError(t, err)
	config := fx.config()
	config.Cubes = map[string]storage.Cube{CellCountsCube: cube}
	snapshot, err := NewSnapshot(config)
	require.NoError(t, err)

	plain, err := NewSnapshot(fx.config())
	require.NoError(t, err)

	c := wmgCriteria(t, criteria.Values{
		criteria.GeneOntologyTermIDs:    {"ENSG1"},
		criteria.OrganismOntologyTermID: {human},
	})
	want, err := NewQuery(plain, nil).CellCounts(c, "")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		got, err := NewQuery(snapshot, nil).CellCounts(c, "")
		require.NoError(t, err)
		assert.True(t, cmp.Equal(want.Records(), got.Records()))
	}
}
