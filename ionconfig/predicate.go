package ionconfig

import "sort"

// ValueSet is the set of criterion values a predicate is tested against.
// Treat it as read-only; the same set is handed to every evaluation.
type ValueSet map[string]struct{}

// NewValueSet builds a set from the given values.
func NewValueSet(values ...string) ValueSet {
	set := make(ValueSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Contains reports set membership.
func (s ValueSet) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// Values returns the set's values in sorted order.
func (s ValueSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// CriteriaPredicate decides whether a criterion passes given the set of
// values configured for it. Predicates should be side-effect free; the
// evaluator calls each at most once per grouped criterion per rule scan and
// lets any panic propagate.
type CriteriaPredicate func(criteriaValues ValueSet) bool

// AlwaysFalse is the predicate used for criteria the caller did not supply.
func AlwaysFalse(ValueSet) bool {
	return false
}

// predicateFromValue returns a predicate that passes when the configured values
// contain the given value.
func predicateFromValue(value string) CriteriaPredicate {
	return func(criteriaValues ValueSet) bool {
		return criteriaValues.Contains(value)
	}
}

// FromValues returns a predicate that passes when the configured values
// intersect the given values.
func FromValues(values ...string) CriteriaPredicate {
	if len(values) == 1 {
		return predicateFromValue(values[0])
	}
	set := NewValueSet(values...)
	return FromValueSet(set)
}

// FromValueSet returns a predicate that passes when the configured values
// intersect the given set.
func FromValueSet(values ValueSet) CriteriaPredicate {
	return func(criteriaValues ValueSet) bool {
		for v := range values {
			if criteriaValues.Contains(v) {
				return true
			}
		}
		return false
	}
}

// FromCondition lifts a per-value check to a predicate that passes when any
// configured value satisfies it.
func FromCondition(cond func(value string) bool) CriteriaPredicate {
	return func(criteriaValues ValueSet) bool {
		for v := range criteriaValues {
			if cond(v) {
				return true
			}
		}
		return false
	}
}

// PredicatesFromProperties converts key-value properties to per-key equality
// predicates.
func PredicatesFromProperties(properties map[string]string) map[string]CriteriaPredicate {
	if len(properties) == 0 {
		return nil
	}
	out := make(map[string]CriteriaPredicate, len(properties))
	for k, v := range properties {
		out[k] = predicateFromValue(v)
	}
	return out
}

// PredicatesFromPropertySets converts key-to-value-set properties to per-key
// intersection predicates.
func PredicatesFromPropertySets(properties map[string]ValueSet) map[string]CriteriaPredicate {
	if len(properties) == 0 {
		return nil
	}
	out := make(map[string]CriteriaPredicate, len(properties))
	for k, v := range properties {
		out[k] = FromValueSet(v)
	}
	return out
}
