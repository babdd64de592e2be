// Package ionconfig implements a cascading configuration engine over Ion
// data trees.
//
// Configuration lives in namespaces. A namespace declares an ordered list of
// criteria, least to most important:
//
//	namespace::Example::{
//	    prioritizedCriteria: [field1, field2, field3]
//	}
//
// Content records for the namespace assign data fields, optionally scoped by
// criteria written as 'name-value' field names:
//
//	Example::{
//	    myField: 1,
//	    'field1-true': {
//	        myField: 2,
//	        'field2-true': { myField: 3 }
//	    }
//	}
//
// Evaluating the namespace walks every rule in specificity order, CSS-like:
// a rule guarded by a more important criterion overrides any combination of
// less important ones. Callers supply criterion values (or custom
// predicates) per lookup:
//
//	manager, err := ionconfig.FromDirectory("ion-cascading-config")
//	values := manager.ValuesForProperties("Example", map[string]string{
//	    "field1": "true",
//	})
//
// A Manager is immutable after construction and safe for concurrent use.
package ionconfig

import (
	"io"
	"sync"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

// Record is one raw top-level configuration value. The name is an opaque
// handle used only in error messages, for example a file name or a database
// key.
type Record struct {
	Name  string
	Value *ionvalue.Value
}

// Manager serves value lookups over compiled namespaces. It is immutable
// and safe for concurrent use; construction is all-or-nothing.
type Manager struct {
	namespaces map[string]*ruleSet
	declared   []string
}

// FromRecords compiles a manager from raw records.
func FromRecords(records ...Record) (*Manager, error) {
	c := newCompiler()
	for _, rec := range records {
		if err := c.process(rec); err != nil {
			return nil, err
		}
	}
	return c.finish()
}

// FromValue compiles a manager from a single value.
func FromValue(name string, value *ionvalue.Value) (*Manager, error) {
	return FromRecords(Record{Name: name, Value: value})
}

// FromReader compiles a manager from a multi-value Ion document.
func FromReader(name string, r io.Reader) (*Manager, error) {
	values, err := ionvalue.ReadAll(r)
	if err != nil {
		return nil, recordError(name, err, "could not parse config")
	}
	records := make([]Record, len(values))
	for i, v := range values {
		records[i] = Record{Name: name, Value: v}
	}
	return FromRecords(records...)
}

// Namespaces returns the declared namespace names in sorted order.
func (m *Manager) Namespaces() []string {
	out := make([]string, len(m.declared))
	copy(out, m.declared)
	return out
}

// RuleCount reports how many top-level rules a namespace compiled to.
func (m *Manager) RuleCount(namespace string) int {
	set := m.namespaces[namespace]
	if set == nil {
		return 0
	}
	return len(set.rules)
}

// DefaultDirectory is where Default looks for configuration files.
const DefaultDirectory = "ion-cascading-config"

var loadDefault = sync.OnceValues(func() (*Manager, error) {
	return FromDirectory(DefaultDirectory)
})

// Default returns the process-wide manager, loaded lazily from
// DefaultDirectory on first use. Code under test should build its own
// manager with an explicit constructor instead.
func Default() (*Manager, error) {
	return loadDefault()
}
