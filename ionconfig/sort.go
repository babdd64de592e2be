package ionconfig

import (
	"math/big"
	"sort"
)

/*
 * Priority sorting.
 *
 * Runs once, after every record has been read, because a namespace's
 * priorities may be declared after its content. For each namespace and each
 * registered rule set:
 *
 *   1. Reject criteria absent from prioritizedCriteria.
 *   2. Drop rules that assign no values.
 *   3. Sort each rule's criteria by descending rank.
 *   4. Stable-sort the rules by the weighted score below, ascending.
 *
 * The score gives every criteria position an order of magnitude more weight
 * than all following positions combined, which yields CSS-like specificity:
 * for priorities [a .. z], [a] < [b] < [y ... a] < [z] < [z, a] < [z, c].
 * With P priorities and descending ranks r_i the score is
 *
 *   sum( (r_i + 1) * P^(P - i) )
 *
 * P^P overflows 64-bit math for P >= 14, so scores are big.Ints, mirroring
 * the arithmetic rather than approximating it. The stable sort preserves
 * compile-time insertion order among equal scores, making tie resolution
 * deterministic per engine instance.
 */

// finish validates all parsed content against the declared namespaces, sorts
// every registered rule set in place, and seals the result into a Manager.
func (c *compiler) finish() (*Manager, error) {
	for _, namespace := range c.namespaceOrder {
		c.toSort[namespace] = append(c.toSort[namespace], c.content[namespace])
	}

	var undeclared []string
	for _, namespace := range c.namespaceOrder {
		if _, ok := c.priorities[namespace]; !ok {
			undeclared = append(undeclared, namespace)
		}
	}
	if len(undeclared) > 0 {
		sort.Strings(undeclared)
		return nil, configErrorf("found %d undeclared namespaces: %v", len(undeclared), undeclared)
	}

	for _, namespace := range c.namespaceOrder {
		priorities := c.priorities[namespace]
		ranks := make(map[string]int, len(priorities))
		for i, name := range priorities {
			ranks[name] = i
		}

		for _, set := range c.toSort[namespace] {
			if err := sortRuleSet(namespace, set, ranks); err != nil {
				return nil, err
			}
		}
	}

	declared := make([]string, 0, len(c.priorities))
	for namespace := range c.priorities {
		declared = append(declared, namespace)
	}
	sort.Strings(declared)

	return &Manager{namespaces: c.content, declared: declared}, nil
}

func sortRuleSet(namespace string, set *ruleSet, ranks map[string]int) error {
	if invalid := invalidCriteria(set, ranks); len(invalid) > 0 {
		return configErrorf("namespace %s contains criteria which are not defined in its priorities, invalid criteria: %v", namespace, invalid)
	}

	kept := set.rules[:0]
	for _, r := range set.rules {
		if r.values.len() > 0 {
			kept = append(kept, r)
		}
	}
	set.rules = kept

	for _, r := range set.rules {
		criteria := r.criteria
		sort.SliceStable(criteria, func(i, j int) bool {
			return ranks[criteria[i].identifier.name] > ranks[criteria[j].identifier.name]
		})
	}

	scores := make([]*big.Int, len(set.rules))
	for i, r := range set.rules {
		scores[i] = ruleScore(r, ranks)
	}
	indexes := make([]int, len(set.rules))
	for i := range indexes {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		return scores[indexes[i]].Cmp(scores[indexes[j]]) < 0
	})
	sorted := make([]*rule, len(set.rules))
	for i, idx := range indexes {
		sorted[i] = set.rules[idx]
	}
	set.rules = sorted

	return nil
}

// invalidCriteria returns the sorted, distinct criterion names used by the
// set but absent from the namespace's priorities.
func invalidCriteria(set *ruleSet, ranks map[string]int) []string {
	seen := make(map[string]struct{})
	for _, r := range set.rules {
		for _, g := range r.criteria {
			if _, ok := ranks[g.identifier.name]; !ok {
				seen[g.identifier.name] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ruleScore computes the big-int specificity score for a rule whose criteria
// are already sorted by descending rank.
func ruleScore(r *rule, ranks map[string]int) *big.Int {
	p := len(ranks)
	pBig := big.NewInt(int64(p))
	score := new(big.Int)
	for i, g := range r.criteria {
		term := new(big.Int).Exp(pBig, big.NewInt(int64(p-i)), nil)
		term.Mul(term, big.NewInt(int64(ranks[g.identifier.name]+1)))
		score.Add(score, term)
	}
	return score
}
