package storage

import (
	"fmt"
	"strconv"
	"strings"
	"summarycube/frame"
)

// Expr is a boolean predicate over the columns of a cube row.
type Expr interface {
	Eval(get func(name string) frame.Value) bool
	Names() []string
	String() string
}

type Eq struct {
	Name  string
	Value string
}

func (e Eq) Eval(get func(string) frame.Value) bool {
	v := get(e.Name)
	return !v.IsNull() && v.Str() == e.Value
}

func (e Eq) Names() []string {
	return []string{e.Name}
}

func (e Eq) String() string {
	return fmt.Sprintf("%s == val(%s)", e.Name, quoteValue(e.Value))
}

type In struct {
	Name   string
	Values []string
}

func (e In) Eval(get func(string) frame.Value) bool {
	v := get(e.Name)
	if v.IsNull() {
		return false
	}
	s := v.Str()
	for _, candidate := range e.Values {
		if candidate == s {
			return true
		}
	}
	return false
}

func (e In) Names() []string {
	return []string{e.Name}
}

func (e In) String() string {
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = quoteValue(v)
	}
	return fmt.Sprintf("%s in [%s]", e.Name, strings.Join(quoted, ", "))
}

type And []Expr

func (e And) Eval(get func(string) frame.Value) bool {
	for _, sub := range e {
		if !sub.Eval(get) {
			return false
		}
	}
	return true
}

func (e And) Names() []string {
	var names []string
	for _, sub := range e {
		names = append(names, sub.Names()...)
	}
	return names
}

func (e And) String() string {
	parts := make([]string, len(e))
	for i, sub := range e {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " and ")
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteValue renders v as a single-quoted literal with backslash escapes.
func quoteValue(v string) string {
	return "'" + valueEscaper.Replace(v) + "'"
}

// writeFingerprint writes an unambiguous encoding of e. Names and values
// are Go-quoted, so no two distinct expressions share an encoding.
func writeFingerprint(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		b.WriteByte('-')
	case Eq:
		b.WriteString("eq(")
		b.WriteString(strconv.Quote(e.Name))
		b.WriteString(strconv.Quote(e.Value))
		b.WriteByte(')')
	case In:
		b.WriteString("in(")
		b.WriteString(strconv.Quote(e.Name))
		b.WriteString(strconv.Itoa(len(e.Values)))
		for _, v := range e.Values {
			b.WriteString(strconv.Quote(v))
		}
		b.WriteByte(')')
	case And:
		b.WriteString("and(")
		b.WriteString(strconv.Itoa(len(e)))
		for _, sub := range e {
			writeFingerprint(b, sub)
		}
		b.WriteByte(')')
	default:
		b.WriteString("expr(")
		b.WriteString(strconv.Quote(fmt.Sprintf("%T", e)))
		b.WriteString(strconv.Quote(e.String()))
		b.WriteByte(')')
	}
}

// AllOf combines terms with AND. It returns nil for no terms and the term
// itself for one.
func AllOf(terms ...Expr) Expr {
	switch len(terms) {
	case 0:
		return nil
	case 1:
		return terms[0]
	}
	return And(terms)
}
