package core

import (
	"github.com/google/btree"
	"summarycube/cubeerr"
	"summarycube/frame"
	"summarycube/storage"
)

type termItem string

func (a termItem) Less(b btree.Item) bool {
	return a < b.(termItem)
}

// termSet is an ordered set of term ids.
type termSet struct {
	tree *btree.BTree
}

func newTermSet() *termSet {
	return &termSet{tree: btree.New(16)}
}

func (set *termSet) add(term string) {
	set.tree.ReplaceOrInsert(termItem(term))
}

func (set *termSet) sorted() []string {
	terms := make([]string, 0, set.tree.Len())
	set.tree.Ascend(func(item btree.Item) bool {
		terms = append(terms, string(item.(termItem)))
		return true
	})
	return terms
}

func drainFrame(cube storage.Cube, q storage.Query, columns []string) (*frame.Frame, error) {
	iter, err := cube.Query(q)
	if err != nil {
		return nil, err
	}
	chunks, err := storage.Drain(iter)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return frame.New(columns...).SetNumeric(cube.Schema().NumericAttributeNames()...), nil
	}
	result, err := frame.Concat(chunks...)
	if err != nil {
		return nil, cubeerr.WrapStore(err, "concatenating chunks of cube %s", cube.Name())
	}
	return result, nil
}

// distinctValues returns the sorted distinct values of one dimension.
func distinctValues(cube storage.Cube, dim string) ([]string, error) {
	if !cube.Schema().HasDimension(dim) {
		return nil, cubeerr.SchemaMismatchf("cube %s has no dimension %q", cube.Name(), dim)
	}
	result, err := drainFrame(cube, storage.Query{Attrs: []string{}, Dims: []string{dim}}, []string{dim})
	if err != nil {
		return nil, err
	}
	col, _ := result.Column(dim)
	set := newTermSet()
	for _, v := range col {
		set.add(v.Str())
	}
	return set.sorted(), nil
}

// groupedValues maps each value of groupBy to the distinct values of dim seen
// alongside it, in order of first appearance.
func groupedValues(cube storage.Cube, dim, groupBy string) (map[string][]string, error) {
	if dim == groupBy {
		return nil, cubeerr.Validationf("cannot group dimension %q by itself", dim)
	}
	for _, name := range []string{dim, groupBy} {
		if !cube.Schema().HasDimension(name) {
			return nil, cubeerr.SchemaMismatchf("cube %s has no dimension %q", cube.Name(), name)
		}
	}

	q := storage.Query{Attrs: []string{}, Dims: []string{dim, groupBy}}
	result, err := drainFrame(cube, q, []string{dim, groupBy})
	if err != nil {
		return nil, err
	}
	result = result.Distinct()

	values, _ := result.Column(dim)
	groups, _ := result.Column(groupBy)
	grouped := make(map[string][]string)
	for i := range values {
		key := groups[i].Str()
		grouped[key] = append(grouped[key], values[i].Str())
	}
	return grouped, nil
}
