package ionconfig

import "strings"

/*
 * Criterion model.
 *
 * A criterion is written "[!]<name>-<value>" in field names and annotations.
 * The first '-' splits name from value; a '-' at either end disqualifies the
 * string, which is then treated as a plain data field name. A '!' prefix
 * negates the match.
 *
 * OR disjuncts sharing the same identifier (name + negation) are grouped
 * into a single groupedCriterion carrying the set of allowed values, so a
 * rule guarded by 'color-blue':'color-red' is one criterion with two values,
 * not two rules.
 */

const criterionDelimiter = "-"

// criterionIdentifier names a criterion dimension and whether its match is
// negated. Identity is by both fields.
type criterionIdentifier struct {
	name    string
	negated bool
}

// criterionDefinition is a single parsed name-value pair. It only exists
// transiently while the compiler groups disjuncts.
type criterionDefinition struct {
	identifier criterionIdentifier
	value      string
}

// parseCriterion parses "[!]<name>-<value>". It returns nil when the string
// is not a criterion: the delimiter must exist and cannot be at either end,
// and the name cannot be empty.
func parseCriterion(s string) *criterionDefinition {
	i := strings.Index(s, criterionDelimiter)
	if i < 1 || i >= len(s)-1 {
		return nil
	}
	if s[0] == '!' {
		if i == 1 {
			return nil
		}
		return &criterionDefinition{
			identifier: criterionIdentifier{name: s[1:i], negated: true},
			value:      s[i+1:],
		}
	}
	return &criterionDefinition{
		identifier: criterionIdentifier{name: s[:i], negated: false},
		value:      s[i+1:],
	}
}

// groupedCriterion is an OR over values sharing one identifier.
type groupedCriterion struct {
	identifier criterionIdentifier
	values     ValueSet
}

// condition is the internal per-criterion check both public entry points
// reduce to: it receives the criterion name and the configured value set.
type condition func(name string, values ValueSet) bool

// test applies the caller's condition, negating the outcome for a negated
// identifier.
func (g groupedCriterion) test(cond condition) bool {
	ok := cond(g.identifier.name, g.values)
	if g.identifier.negated {
		return !ok
	}
	return ok
}
