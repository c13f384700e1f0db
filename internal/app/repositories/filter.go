package repositories

import (
	"github.com/Masterminds/squirrel"
)

// Cond restricts a column to a set of values.
type Cond struct {
	Column string
	Values []interface{}
}

// Filter is a conjunction of column conditions. A filter marked None
// matches no rows; the zero value matches every row.
type Filter struct {
	None  bool
	Conds []Cond
}

// All matches every row.
func All() Filter { return Filter{} }

// NoRows matches nothing.
func NoRows() Filter { return Filter{None: true} }

// Where matches rows whose column equals one of values. No values means no rows.
func Where(column string, values ...interface{}) Filter {
	return All().And(column, values...)
}

// WhereIDs is Where over an int64 slice.
func WhereIDs(column string, ids []int64) Filter {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return Where(column, values...)
}

// And adds a condition to the filter.
func (f Filter) And(column string, values ...interface{}) Filter {
	if len(values) == 0 {
		return NoRows()
	}
	conds := make([]Cond, len(f.Conds), len(f.Conds)+1)
	copy(conds, f.Conds)
	return Filter{None: f.None, Conds: append(conds, Cond{Column: column, Values: values})}
}

// Merge returns the conjunction of f and other.
func (f Filter) Merge(other Filter) Filter {
	out := Filter{None: f.None || other.None}
	out.Conds = append(append(out.Conds, f.Conds...), other.Conds...)
	return out
}

// sqlizer converts the filter into a squirrel predicate.
func (f Filter) sqlizer() squirrel.Sqlizer {
	if f.None {
		return squirrel.Expr("1 = 0")
	}
	and := squirrel.And{}
	for _, c := range f.Conds {
		if len(c.Values) == 1 {
			and = append(and, squirrel.Eq{c.Column: c.Values[0]})
		} else {
			and = append(and, squirrel.Eq{c.Column: c.Values})
		}
	}
	return and
}

// Page is an offset window over an ordered result. A zero Limit means no limit.
type Page struct {
	Offset uint64
	Limit  int
}
