package ionconfig

import (
	"github.com/amazon-ion/ion-go/ion"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

/*
 * Evaluation.
 *
 * Pure function of (compiled rule sets, predicate map). A linear scan over a
 * namespace's sorted rules accumulates field assignments; later matches
 * overwrite earlier ones, which is the cascade. Accumulated properties then
 * materialize into values, recursing into dynamic structs and lists under
 * the same condition.
 *
 * Evaluation never fails: an unknown namespace yields an empty map and a
 * criterion without a predicate is simply false. Predicates are called at
 * most once per grouped criterion per rule scan; panics from caller-supplied
 * predicates propagate unchanged.
 */

// ValuesForProperties evaluates a namespace with per-key equality: a
// criterion passes when its configured values contain the property value for
// its name.
func (m *Manager) ValuesForProperties(namespace string, properties map[string]string) map[string]*ionvalue.Value {
	return m.valuesByCondition(namespace, func(name string, values ValueSet) bool {
		v, ok := properties[name]
		return ok && values.Contains(v)
	})
}

// ValuesForPredicates evaluates a namespace with caller-supplied predicates.
// Criteria whose name has no predicate never pass.
func (m *Manager) ValuesForPredicates(namespace string, predicates map[string]CriteriaPredicate) map[string]*ionvalue.Value {
	return m.valuesByCondition(namespace, func(name string, values ValueSet) bool {
		p, ok := predicates[name]
		if !ok {
			return false
		}
		return p(values)
	})
}

func (m *Manager) valuesByCondition(namespace string, cond condition) map[string]*ionvalue.Value {
	aggregated := cascade(m.namespaces[namespace], cond)
	out := make(map[string]*ionvalue.Value, aggregated.len())
	for _, name := range aggregated.names {
		out[name] = materialize(aggregated.byName[name], cond)
	}
	return out
}

// cascade scans the sorted rules, merging the values of every matching rule
// into a single ordered accumulator with last-writer-wins per field.
func cascade(set *ruleSet, cond condition) *fieldMap {
	aggregated := newFieldMap()
	if set == nil {
		return aggregated
	}
	for _, r := range set.rules {
		if !r.matches(cond) {
			continue
		}
		for _, name := range r.values.names {
			aggregated.put(name, r.values.byName[name])
		}
	}
	return aggregated
}

// materialize turns an accumulated property into a value. Basic values are
// cloned so callers can never mutate interned state.
func materialize(p property, cond condition) *ionvalue.Value {
	switch p := p.(type) {
	case *basicProperty:
		return p.value.Clone()
	case *dynamicStruct:
		aggregated := cascade(p.rules, cond)
		fields := make([]ionvalue.Field, 0, aggregated.len())
		for _, name := range aggregated.names {
			fields = append(fields, ionvalue.Field{
				Name:  name,
				Value: materialize(aggregated.byName[name], cond),
			})
		}
		return ionvalue.NewStruct(fields...)
	case *dynamicList:
		var elements []*ionvalue.Value
		for _, element := range p.elements {
			elements = append(elements, elementValues(element, cond)...)
		}
		return ionvalue.NewList(elements...)
	}
	// dynamicSubField is only reachable through elementValues.
	return ionvalue.NewNull(ion.NullType)
}

// elementValues produces the values a single list element contributes. A
// sub-field uses its first matching rule only: OR disjuncts compile into one
// rule per disjunct with an identical payload, so emitting one value per
// passing disjunct would duplicate.
func elementValues(p property, cond condition) []*ionvalue.Value {
	sub, ok := p.(*dynamicSubField)
	if !ok {
		return []*ionvalue.Value{materialize(p, cond)}
	}

	for _, r := range sub.rules.rules {
		if !r.matches(cond) {
			continue
		}
		name := r.values.names[0]
		value, _ := r.values.get(name)
		if name == subFieldValueName {
			return []*ionvalue.Value{materialize(value, cond)}
		}
		// "values" is validated list-based at compile time; splice its
		// elements into the parent list.
		return materialize(value, cond).Elements()
	}
	return nil
}
