package ionconfig

import (
	"github.com/amazon-ion/ion-go/ion"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

/*
 * Rule and property models.
 *
 * A rule pairs a conjunction of grouped criteria with the data fields it
 * assigns. Rules live in rule sets: the top-level content of a namespace is
 * one set, and every dynamic struct and list sub-field owns a nested set.
 * All sets are registered during compilation and sorted in place afterwards,
 * so the variants below just hold a pointer to their set.
 *
 * property is a closed sum with exactly four shapes; materialization
 * dispatches on the concrete type (see evaluate.go).
 */

// fieldMap is an insertion-ordered field name → property map with one entry
// per name; a later put for the same name replaces the value in place.
type fieldMap struct {
	names  []string
	byName map[string]property
}

func newFieldMap() *fieldMap {
	return &fieldMap{byName: make(map[string]property)}
}

func (m *fieldMap) put(name string, p property) {
	if _, ok := m.byName[name]; !ok {
		m.names = append(m.names, name)
	}
	m.byName[name] = p
}

func (m *fieldMap) get(name string) (property, bool) {
	p, ok := m.byName[name]
	return p, ok
}

func (m *fieldMap) len() int {
	return len(m.names)
}

// rule is one matchable property: criteria conjunction plus field
// assignments declared directly at its nesting level.
type rule struct {
	criteria []groupedCriterion
	values   *fieldMap
}

// matches reports whether every grouped criterion passes the condition.
func (r *rule) matches(cond condition) bool {
	for _, g := range r.criteria {
		if !g.test(cond) {
			return false
		}
	}
	return true
}

// ruleSet is one sortable vector of rules. Dynamic properties keep a pointer
// so the priority sorter can filter and reorder the rules in place.
type ruleSet struct {
	rules []*rule
}

// property produces part of an evaluation result once the engine is
// compiled. Implementations are the four closed variants below.
type property interface {
	isProperty()
}

// basicProperty is a terminal data-tree value, emitted as a clone.
type basicProperty struct {
	value *ionvalue.Value
}

// dynamicStruct is a struct whose fields cascade from a nested rule set
// under the caller's predicates.
type dynamicStruct struct {
	rules *ruleSet
}

// dynamicList is a list whose elements each contribute zero, one, or many
// values to the final list.
type dynamicList struct {
	elements []property
}

// dynamicSubField is a conditional list element: the first matching rule
// contributes either one value ("value") or an inline-spliced list
// ("values"). It is only ever evaluated in list context.
type dynamicSubField struct {
	rules *ruleSet
}

func (*basicProperty) isProperty()   {}
func (*dynamicStruct) isProperty()   {}
func (*dynamicList) isProperty()     {}
func (*dynamicSubField) isProperty() {}

// listBased reports whether the property always materializes to a non-null
// list, used to validate "values" sub-fields at compile time.
func listBased(p property) bool {
	switch p := p.(type) {
	case *basicProperty:
		return !p.value.IsNull() && p.value.Type() == ion.ListType
	case *dynamicList:
		return true
	}
	return false
}
