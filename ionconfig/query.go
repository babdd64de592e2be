package ionconfig

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/amazon-ion/ion-go/ion"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

// Query accumulates per-lookup predicates on top of a NamespacedManager's
// defaults and exposes typed accessors over the result. Queries are mutable
// and not safe for concurrent use.
//
// Every accessor returns its zero value and false when the key is missing,
// null, or of the wrong category; the Require variants turn that absence
// into an error wrapping ErrNotFound.
type Query struct {
	manager              *NamespacedManager
	additionalPredicates map[string]CriteriaPredicate
	additionalProperties map[string]ValueSet
	propertiesAdded      bool
	cacheResults         bool
	cached               *lookupResult
}

// WithProperty adds an allowed value for a property key. Values for the same
// key accumulate into a set rather than overwrite.
func (q *Query) WithProperty(key, value string) *Query {
	if q.additionalProperties == nil {
		q.additionalProperties = make(map[string]ValueSet)
	}
	set, ok := q.additionalProperties[key]
	if !ok {
		set = make(ValueSet)
		q.additionalProperties[key] = set
	}
	set[value] = struct{}{}
	q.propertiesAdded = true
	q.cached = nil
	return q
}

// WithProperties adds a mapping of property keys to allowed values.
func (q *Query) WithProperties(properties map[string]string) *Query {
	for k, v := range properties {
		q.WithProperty(k, v)
	}
	return q
}

// WithPredicate sets the predicate for a key, replacing any previous one.
func (q *Query) WithPredicate(key string, predicate CriteriaPredicate) *Query {
	if q.additionalPredicates == nil {
		q.additionalPredicates = make(map[string]CriteriaPredicate)
	}
	q.additionalPredicates[key] = predicate
	q.cached = nil
	return q
}

// WithPredicates sets predicates for multiple keys.
func (q *Query) WithPredicates(predicates map[string]CriteriaPredicate) *Query {
	for k, p := range predicates {
		q.WithPredicate(k, p)
	}
	return q
}

// CacheResults controls whether the query reuses its previous lookup until a
// predicate or property changes.
func (q *Query) CacheResults(cache bool) *Query {
	q.cacheResults = cache
	if !cache {
		q.cached = nil
	}
	return q
}

// Clear removes every predicate and property added to this query.
func (q *Query) Clear() *Query {
	q.additionalPredicates = nil
	q.additionalProperties = nil
	q.propertiesAdded = false
	q.cached = nil
	return q
}

func (q *Query) lookup() lookupResult {
	if q.propertiesAdded {
		if q.additionalPredicates == nil {
			q.additionalPredicates = make(map[string]CriteriaPredicate)
		}
		for k, p := range PredicatesFromPropertySets(q.additionalProperties) {
			q.additionalPredicates[k] = p
		}
		q.additionalProperties = nil
		q.propertiesAdded = false
		q.cached = nil
	}

	if q.cacheResults {
		if q.cached == nil {
			result := q.manager.lookup(q.additionalPredicates)
			q.cached = &result
		}
		return *q.cached
	}

	q.cached = nil
	return q.manager.lookup(q.additionalPredicates)
}

// FindAll evaluates the query and returns every matching key-value pair.
func (q *Query) FindAll() map[string]*ionvalue.Value {
	return q.lookup().values
}

// Find returns the value for a key.
func (q *Query) Find(key string) (*ionvalue.Value, bool) {
	v, ok := q.lookup().values[key]
	return v, ok
}

// Text returns a string or symbol value for the key.
func (q *Query) Text(key string) (string, bool) {
	v, ok := q.Find(key)
	if !ok {
		return "", false
	}
	return v.Text()
}

// Int returns an int value for the key when it fits an int64 exactly.
func (q *Query) Int(key string) (int64, bool) {
	v, ok := q.Find(key)
	if !ok {
		return 0, false
	}
	return v.Int64()
}

// BigInt returns an int value for the key at arbitrary precision.
func (q *Query) BigInt(key string) (*big.Int, bool) {
	v, ok := q.Find(key)
	if !ok {
		return nil, false
	}
	return v.Int()
}

// Decimal returns a decimal value for the key.
func (q *Query) Decimal(key string) (*ion.Decimal, bool) {
	v, ok := q.Find(key)
	if !ok {
		return nil, false
	}
	return v.Decimal()
}

// Float returns a float value for the key.
func (q *Query) Float(key string) (float64, bool) {
	v, ok := q.Find(key)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Bool returns a bool value for the key.
func (q *Query) Bool(key string) (bool, bool) {
	v, ok := q.Find(key)
	if !ok {
		return false, false
	}
	return v.Bool()
}

// Timestamp returns a timestamp value for the key.
func (q *Query) Timestamp(key string) (ion.Timestamp, bool) {
	v, ok := q.Find(key)
	if !ok {
		return ion.Timestamp{}, false
	}
	return v.Timestamp()
}

// Decode deserializes a struct value for the key into target using ion-go.
// It reports false with no error when the key is missing or null.
func (q *Query) Decode(key string, target any) (bool, error) {
	v, ok := q.Find(key)
	if !ok || v.IsNull() {
		return false, nil
	}
	if err := ion.Unmarshal([]byte(v.String()), target); err != nil {
		return false, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// RequireValue is Find, with absence promoted to an error. Like the other
// Require accessors it evaluates the query exactly once, reusing that result
// for the error message.
func (q *Query) RequireValue(key string) (*ionvalue.Value, error) {
	result := q.lookup()
	v, ok := result.values[key]
	if !ok {
		return nil, q.notFound(result, key, "value")
	}
	return v, nil
}

// RequireText is Text, with absence promoted to an error.
func (q *Query) RequireText(key string) (string, error) {
	result := q.lookup()
	if v, ok := result.values[key]; ok {
		if s, ok := v.Text(); ok {
			return s, nil
		}
	}
	return "", q.notFound(result, key, "text")
}

// RequireInt is Int, with absence promoted to an error.
func (q *Query) RequireInt(key string) (int64, error) {
	result := q.lookup()
	if v, ok := result.values[key]; ok {
		if i, ok := v.Int64(); ok {
			return i, nil
		}
	}
	return 0, q.notFound(result, key, "int")
}

// RequireBool is Bool, with absence promoted to an error.
func (q *Query) RequireBool(key string) (bool, error) {
	result := q.lookup()
	if v, ok := result.values[key]; ok {
		if b, ok := v.Bool(); ok {
			return b, nil
		}
	}
	return false, q.notFound(result, key, "bool")
}

func (q *Query) notFound(result lookupResult, key, kind string) error {
	keys := make([]string, 0, len(result.predicates))
	for k := range result.predicates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%w: no %s for key %q in namespace %q with criteria %v",
		ErrNotFound, kind, key, q.manager.namespace, keys)
}
