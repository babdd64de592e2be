package ionconfig

import (
	"github.com/amzn/ion-cascading-config/ionvalue"
)

// Options configures a NamespacedManager.
type Options struct {
	// Namespace every lookup runs against. Required.
	Namespace string
	// Manager to query. Defaults to Default().
	Manager *Manager
	// DefaultProperties are converted to equality predicates and applied to
	// every lookup. They overwrite DefaultPredicates with the same key.
	DefaultProperties map[string]string
	// DefaultPredicates are applied to every lookup.
	DefaultPredicates map[string]CriteriaPredicate
	// CacheResults makes queries created by this manager cache lookups
	// until their predicates change.
	CacheResults bool
}

// NamespacedManager wraps a Manager with a fixed namespace and default
// predicates so callers do not repeat them per lookup. It is immutable and
// safe for concurrent use; the queries it creates are not.
type NamespacedManager struct {
	namespace         string
	manager           *Manager
	defaultProperties map[string]string
	defaultPredicates map[string]CriteriaPredicate
	defaultValues     map[string]*ionvalue.Value
	cacheResults      bool
}

// NewNamespacedManager builds the facade and evaluates the default
// predicates once, so lookups with no additional predicates are free.
func NewNamespacedManager(opts Options) (*NamespacedManager, error) {
	if opts.Namespace == "" {
		return nil, configErrorf("namespace cannot be empty")
	}
	manager := opts.Manager
	if manager == nil {
		var err error
		if manager, err = Default(); err != nil {
			return nil, err
		}
	}

	properties := make(map[string]string, len(opts.DefaultProperties))
	for k, v := range opts.DefaultProperties {
		properties[k] = v
	}
	predicates := make(map[string]CriteriaPredicate, len(opts.DefaultPredicates)+len(properties))
	for k, p := range opts.DefaultPredicates {
		predicates[k] = p
	}
	for k, p := range PredicatesFromProperties(properties) {
		predicates[k] = p
	}

	return &NamespacedManager{
		namespace:         opts.Namespace,
		manager:           manager,
		defaultProperties: properties,
		defaultPredicates: predicates,
		defaultValues:     manager.ValuesForPredicates(opts.Namespace, predicates),
		cacheResults:      opts.CacheResults,
	}, nil
}

// Namespace returns the namespace every lookup runs against.
func (n *NamespacedManager) Namespace() string {
	return n.namespace
}

// DefaultProperties returns a copy of the default properties.
func (n *NamespacedManager) DefaultProperties() map[string]string {
	out := make(map[string]string, len(n.defaultProperties))
	for k, v := range n.defaultProperties {
		out[k] = v
	}
	return out
}

// Query starts a new query against this manager's namespace.
func (n *NamespacedManager) Query() *Query {
	return &Query{
		manager:      n,
		cacheResults: n.cacheResults,
	}
}

// lookupResult pairs an evaluation output with the predicates that produced
// it, so accessors can name the criteria in error messages.
type lookupResult struct {
	predicates map[string]CriteriaPredicate
	values     map[string]*ionvalue.Value
}

// lookup evaluates the namespace with the default predicates overlaid by any
// additional ones. With nothing additional the construction-time result is
// reused.
func (n *NamespacedManager) lookup(additional map[string]CriteriaPredicate) lookupResult {
	if len(additional) == 0 {
		return lookupResult{predicates: n.defaultPredicates, values: n.defaultValues}
	}
	combined := make(map[string]CriteriaPredicate, len(n.defaultPredicates)+len(additional))
	for k, p := range n.defaultPredicates {
		combined[k] = p
	}
	for k, p := range additional {
		combined[k] = p
	}
	return lookupResult{
		predicates: combined,
		values:     n.manager.ValuesForPredicates(n.namespace, combined),
	}
}
