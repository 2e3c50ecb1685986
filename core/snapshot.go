package core

import (
	"sort"
	"summarycube/criteria"
	"summarycube/cubeerr"
	"summarycube/frame"
	"summarycube/storage"
)

// Roles of the named cubes in a snapshot.
const (
	ExpressionSummaryCube        = "expression_summary"
	ExpressionSummaryDefaultCube = "expression_summary_default"
	MarkerGenesCube              = "marker_genes"
	CellCountsCube               = "cell_counts"
)

const (
	CellCountsTable   = "cell_counts"
	DefaultDiffExpKey = "default"
)

type SnapshotConfig struct {
	Version string
	// Cubes by role.
	Cubes map[string]storage.Cube
	// DiffExpCubes by selection key: DefaultDiffExpKey or the canonical
	// dimension the cube is specialized on.
	DiffExpCubes map[string]storage.Cube
	SideTables   map[string]*frame.Frame
	Cardinality  Cardinality
	// Variants registered in the name map; nil means criteria.Variants.
	Variants []*criteria.Variant
}

// Snapshot is an immutable set of cubes and side tables for one published
// data version. It is safe for concurrent use.
type Snapshot struct {
	version      string
	cubes        map[string]storage.Cube
	diffExpCubes map[string]storage.Cube
	sideTables   map[string]*frame.Frame
	cardinality  Cardinality
	names        *NameMap
}

func NewSnapshot(config SnapshotConfig) (*Snapshot, error) {
	snapshot := &Snapshot{
		version:      config.Version,
		cubes:        make(map[string]storage.Cube, len(config.Cubes)),
		diffExpCubes: make(map[string]storage.Cube, len(config.DiffExpCubes)),
		sideTables:   make(map[string]*frame.Frame, len(config.SideTables)),
		cardinality:  config.Cardinality.Copy(),
	}
	for role, cube := range config.Cubes {
		snapshot.cubes[role] = cube
	}
	for key, cube := range config.DiffExpCubes {
		snapshot.diffExpCubes[key] = cube
	}
	for name, table := range config.SideTables {
		snapshot.sideTables[name] = table
	}

	if len(snapshot.diffExpCubes) > 0 {
		if _, ok := snapshot.diffExpCubes[DefaultDiffExpKey]; !ok {
			return nil, cubeerr.SchemaMismatchf("differential expression cubes have no %q entry", DefaultDiffExpKey)
		}
	}
	for key, cube := range snapshot.diffExpCubes {
		if key != DefaultDiffExpKey && !cube.Schema().HasDimension(key) {
			return nil, cubeerr.SchemaMismatchf("differential expression cube %s is registered under %q, which is not one of its dimensions",
				cube.Name(), key)
		}
	}

	variants := config.Variants
	if variants == nil {
		variants = criteria.Variants
	}
	names, err := NewNameMap(snapshot.columnNames(), variants)
	if err != nil {
		return nil, err
	}
	snapshot.names = names
	return snapshot, nil
}

func (snapshot *Snapshot) columnNames() []string {
	seen := make(map[string]bool)
	var columns []string
	addSchema := func(schema *storage.Schema) {
		for _, name := range append(schema.DimensionNames(), schema.AttributeNames()...) {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	for _, role := range sortedKeys(snapshot.cubes) {
		addSchema(snapshot.cubes[role].Schema())
	}
	for _, key := range sortedKeys(snapshot.diffExpCubes) {
		addSchema(snapshot.diffExpCubes[key].Schema())
	}
	return columns
}

func sortedKeys(m map[string]storage.Cube) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (snapshot *Snapshot) Version() string {
	return snapshot.version
}

func (snapshot *Snapshot) Cube(role string) (storage.Cube, error) {
	cube, ok := snapshot.cubes[role]
	if !ok {
		return nil, cubeerr.SchemaMismatchf("snapshot %s has no %s cube", snapshot.version, role)
	}
	return cube, nil
}

func (snapshot *Snapshot) DiffExpCube(key string) (storage.Cube, bool) {
	cube, ok := snapshot.diffExpCubes[key]
	return cube, ok
}

func (snapshot *Snapshot) DiffExpKeys() []string {
	return sortedKeys(snapshot.diffExpCubes)
}

func (snapshot *Snapshot) SideTable(name string) (*frame.Frame, bool) {
	table, ok := snapshot.sideTables[name]
	return table, ok
}

func (snapshot *Snapshot) Cardinality() Cardinality {
	return snapshot.cardinality.Copy()
}

func (snapshot *Snapshot) Names() *NameMap {
	return snapshot.names
}

// canonical resolves a criteria field name, falling back to the
// depluralization rule for fields of unregistered variants.
func (snapshot *Snapshot) canonical(field string) string {
	if name, ok := snapshot.names.Canonical(field); ok {
		return name
	}
	return Depluralize(field)
}

// LoadSnapshot opens the cubes and side tables named by the stored manifest.
// A manifest without cardinality gets it computed from the differential
// expression cubes.
func LoadSnapshot(mds storage.MetadataStore, backend storage.Backend) (*Snapshot, error) {
	manifest, err := mds.GetManifest()
	if err != nil {
		return nil, err
	}

	config := SnapshotConfig{
		Version:      manifest.Version,
		Cubes:        make(map[string]storage.Cube, len(manifest.Cubes)),
		DiffExpCubes: make(map[string]storage.Cube, len(manifest.DiffExpCubes)),
		SideTables:   make(map[string]*frame.Frame, len(manifest.SideTables)),
		Cardinality:  Cardinality(manifest.Cardinality),
	}
	for role, name := range manifest.Cubes {
		if config.Cubes[role], err = backend.Cube(name); err != nil {
			return nil, err
		}
	}
	for key, name := range manifest.DiffExpCubes {
		if config.DiffExpCubes[key], err = backend.Cube(name); err != nil {
			return nil, err
		}
	}
	for _, name := range manifest.SideTables {
		table, err := mds.GetSideTable(name)
		if err != nil {
			return nil, err
		}
		config.SideTables[name] = table
	}

	if len(config.Cardinality) == 0 && len(config.DiffExpCubes) > 0 {
		cubes := make([]storage.Cube, 0, len(config.DiffExpCubes))
		for _, key := range sortedKeys(config.DiffExpCubes) {
			cubes = append(cubes, config.DiffExpCubes[key])
		}
		if config.Cardinality, err = ComputeCardinality(cubes...); err != nil {
			return nil, err
		}
	}
	return NewSnapshot(config)
}
