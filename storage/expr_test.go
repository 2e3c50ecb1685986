package storage

import (
	"github.com/stretchr/testify/assert"
	"summarycube/frame"
	"testing"
)

func TestExprString(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{Eq{Name: "dataset_id", Value: "ds1"}, "dataset_id == val('ds1')"},
		{Eq{Name: "publication_citation", Value: "O'Brien 2020"}, `publication_citation == val('O\'Brien 2020')`},
		{In{Name: "publication_citation", Values: []string{"A', 'B"}}, `publication_citation in ['A\', \'B']`},
		{In{Name: "publication_citation", Values: []string{"A", "B"}}, "publication_citation in ['A', 'B']"},
		{In{Name: "path", Values: []string{`C:\data`}}, `path in ['C:\\data']`},
		{
			And{Eq{Name: "a", Value: "1"}, In{Name: "b", Values: []string{"x", "y"}}},
			"a == val('1') and b in ['x', 'y']",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.expr.String())
	}
}

func TestExprEval(t *testing.T) {
	row := map[string]frame.Value{
		"publication_citation": frame.Str("O'Brien 2020"),
		"dataset_id":           frame.Null(),
	}
	get := func(name string) frame.Value {
		if v, ok := row[name]; ok {
			return v
		}
		return frame.Null()
	}

	assert.True(t, Eq{Name: "publication_citation", Value: "O'Brien 2020"}.Eval(get))
	assert.False(t, In{Name: "publication_citation", Values: []string{"O", "Brien 2020"}}.Eval(get))
	assert.False(t, In{Name: "dataset_id", Values: []string{""}}.Eval(get))
	assert.False(t, And{
		Eq{Name: "publication_citation", Value: "O'Brien 2020"},
		Eq{Name: "dataset_id", Value: "ds1"},
	}.Eval(get))
}
