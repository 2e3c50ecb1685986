package core

import (
	"summarycube/criteria"
	"summarycube/cubeerr"
	"summarycube/frame"
	"summarycube/storage"
)

const (
	CellCountColumn      = "n_cells"
	TotalCellCountColumn = "n_total_cells"
)

// Plan is a cube read derived from criteria, before execution.
type Plan struct {
	Cube      string
	Cond      storage.Expr
	DimSlices [][]string
	// nil selects every attribute / dimension.
	Attrs []string
	Dims  []string
	// Columns of the result frame, in order.
	Columns []string
}

func (plan *Plan) Query() storage.Query {
	return storage.Query{
		Cond:      plan.Cond,
		DimSlices: plan.DimSlices,
		Attrs:     plan.Attrs,
		Dims:      plan.Dims,
	}
}

// Condition renders the predicate, or "" when there is none.
func (plan *Plan) Condition() string {
	if plan.Cond == nil {
		return ""
	}
	return plan.Cond.String()
}

// Query plans and runs criteria against the cubes of one snapshot.
type Query struct {
	snapshot *Snapshot
	params   *CubeQueryParams
}

// NewQuery returns a planner over snapshot. A nil params returns every
// column of the queried cube.
func NewQuery(snapshot *Snapshot, params *CubeQueryParams) *Query {
	return &Query{snapshot: snapshot, params: params}
}

func (query *Query) Snapshot() *Snapshot {
	return query.snapshot
}

// Explain builds the plan for reading cube with c without running it.
func (query *Query) Explain(cube storage.Cube, c *criteria.Criteria, compareDimension string) (*Plan, error) {
	schema := cube.Schema()
	plan := &Plan{Cube: cube.Name()}

	var terms []storage.Expr
	for _, field := range c.Fields() {
		column := query.snapshot.canonical(field.Name)
		if schema.HasDimension(column) {
			continue
		}
		var term storage.Expr
		switch {
		case len(field.Values) == 1 && field.Values[0] != "":
			term = storage.Eq{Name: column, Value: field.Values[0]}
		case len(field.Values) > 1:
			term = storage.In{Name: column, Values: field.Values}
		default:
			continue
		}
		if !schema.HasAttribute(column) {
			return nil, cubeerr.SchemaMismatchf("criteria field %s has no matching column in cube %s",
				field.Name, cube.Name())
		}
		terms = append(terms, term)
	}
	plan.Cond = storage.AllOf(terms...)

	plan.DimSlices = make([][]string, len(schema.Dimensions))
	for i, dim := range schema.DimensionNames() {
		plan.DimSlices[i] = []string{}
		for _, name := range query.snapshot.names.Candidates(dim) {
			if values, ok := c.Values(name); ok && len(values) > 0 {
				plan.DimSlices[i] = values
				break
			}
		}
	}

	if compareDimension != "" && !schema.HasAttribute(compareDimension) && !schema.HasDimension(compareDimension) {
		return nil, cubeerr.SchemaMismatchf("compare dimension %q is not a column of cube %s",
			compareDimension, cube.Name())
	}

	if query.params != nil {
		plan.Attrs = query.params.attrsFor(schema)
		plan.Dims = query.params.dimsFor(schema)
		if schema.HasAttribute(compareDimension) && !contains(plan.Attrs, compareDimension) {
			plan.Attrs = append(plan.Attrs, compareDimension)
		}
		if schema.HasDimension(compareDimension) && !contains(plan.Dims, compareDimension) {
			dims := []string{}
			for _, name := range schema.DimensionNames() {
				if name == compareDimension || contains(plan.Dims, name) {
					dims = append(dims, name)
				}
			}
			plan.Dims = dims
		}
		for _, name := range schema.NumericAttributeNames() {
			if !contains(plan.Attrs, name) {
				plan.Attrs = append(plan.Attrs, name)
			}
		}
	}

	dims, attrs := plan.Dims, plan.Attrs
	if dims == nil {
		dims = schema.DimensionNames()
	}
	if attrs == nil {
		attrs = schema.AttributeNames()
	}
	plan.Columns = append(append([]string{}, dims...), attrs...)
	return plan, nil
}

// run drains every chunk of the planned read into one frame.
func (query *Query) run(cube storage.Cube, c *criteria.Criteria, compareDimension string) (*frame.Frame, error) {
	plan, err := query.Explain(cube, c, compareDimension)
	if err != nil {
		return nil, err
	}
	return drainFrame(cube, plan.Query(), plan.Columns)
}

func (query *Query) runRole(role string, c *criteria.Criteria, compareDimension string) (*frame.Frame, error) {
	cube, err := query.snapshot.Cube(role)
	if err != nil {
		return nil, err
	}
	return query.run(cube, c, compareDimension)
}

func (query *Query) ExpressionSummary(c *criteria.Criteria, compareDimension string) (*frame.Frame, error) {
	return query.runRole(ExpressionSummaryCube, c, compareDimension)
}

func (query *Query) ExpressionSummaryDefault(c *criteria.Criteria) (*frame.Frame, error) {
	return query.runRole(ExpressionSummaryDefaultCube, c, "")
}

// ExpressionSummaryDiffExp reads the differential expression cube chosen by
// SelectDiffExpCube.
func (query *Query) ExpressionSummaryDiffExp(c *criteria.Criteria) (*frame.Frame, error) {
	cube, _, err := SelectDiffExpCube(query.snapshot, c)
	if err != nil {
		return nil, err
	}
	return query.run(cube, c, "")
}

func (query *Query) MarkerGenes(c *criteria.Criteria) (*frame.Frame, error) {
	return query.runRole(MarkerGenesCube, c, "")
}

// CellCounts ignores the gene filter and reports n_cells as n_total_cells.
func (query *Query) CellCounts(c *criteria.Criteria, compareDimension string) (*frame.Frame, error) {
	result, err := query.runRole(CellCountsCube, c.Without(criteria.GeneOntologyTermIDs), compareDimension)
	if err != nil {
		return nil, err
	}
	return result.Rename(map[string]string{CellCountColumn: TotalCellCountColumn}), nil
}

// CellCountsDF filters the flattened cell count table. Criteria fields with
// no matching column are ignored.
func (query *Query) CellCountsDF(c *criteria.Criteria) (*frame.Frame, error) {
	table, ok := query.snapshot.SideTable(CellCountsTable)
	if !ok {
		return nil, cubeerr.SchemaMismatchf("snapshot %s has no %s table", query.snapshot.Version(), CellCountsTable)
	}

	mask := make([]bool, table.Len())
	for i := range mask {
		mask[i] = true
	}
	for _, field := range c.Fields() {
		if len(field.Values) == 0 {
			continue
		}
		in, ok := table.IsIn(query.snapshot.canonical(field.Name), field.Values)
		if !ok {
			continue
		}
		for i := range mask {
			mask[i] = mask[i] && in[i]
		}
	}
	return table.Filter(mask).Rename(map[string]string{CellCountColumn: TotalCellCountColumn}), nil
}

// ListPrimaryFilterDimensionTermIDs returns the sorted distinct values of a
// cell count cube dimension.
func (query *Query) ListPrimaryFilterDimensionTermIDs(primaryDim string) ([]string, error) {
	cube, err := query.snapshot.Cube(CellCountsCube)
	if err != nil {
		return nil, err
	}
	return distinctValues(cube, primaryDim)
}

func (query *Query) ListGroupedPrimaryFilterDimensionsTermIDs(primaryDim, groupByDim string) (map[string][]string, error) {
	cube, err := query.snapshot.Cube(CellCountsCube)
	if err != nil {
		return nil, err
	}
	return groupedValues(cube, primaryDim, groupByDim)
}
