package ionconfig

import (
	"strings"

	"github.com/amazon-ion/ion-go/ion"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

/*
 * Rule compilation.
 *
 * Converts raw records into per-namespace rule sets. Two kinds of top-level
 * records exist:
 *
 *   namespace::Name::{ prioritizedCriteria: [ ... ] }   declaration
 *   Name::{ ... }                                       content
 *
 * Content structs are walked by recursive descent. A field whose name parses
 * as a criterion scopes a deeper rule; any other field is a data field of the
 * rule for the current criteria path. Values that contain nested structs or
 * lists compile into dynamic properties owning their own rule sets.
 *
 * The descent threads an explicit accumulator of every rule set created for
 * a namespace; the priority sorter runs over that accumulator once all
 * records are read, because priorities may be declared after content.
 *
 * Compilation is all-or-nothing: the first problem aborts construction with
 * a *ConfigError. Problems found while reading a record name that record;
 * the post-parse checks name the namespace instead.
 */

const (
	namespaceAnnotation = "namespace"
	prioritiesFieldName = "prioritizedCriteria"
	subFieldValueName   = "value"
	subFieldValuesName  = "values"
)

const namespaceDeclarationSyntax = "'namespace'::'YourNamespace'::{prioritizedCriteria:[/*symbols or strings*/]}"

type compiler struct {
	// priorities holds each declared namespace's prioritizedCriteria.
	priorities map[string][]string
	// content holds each namespace's top-level rule set; records for the
	// same namespace concatenate.
	content map[string]*ruleSet
	// toSort collects every rule set created for a namespace, nested sets
	// included, for the post-parse priority sort.
	toSort map[string][]*ruleSet
	// namespaceOrder remembers first appearance for deterministic output.
	namespaceOrder []string
}

func newCompiler() *compiler {
	return &compiler{
		priorities: make(map[string][]string),
		content:    make(map[string]*ruleSet),
		toSort:     make(map[string][]*ruleSet),
	}
}

func (c *compiler) process(rec Record) error {
	v := rec.Value
	if v == nil {
		return recordErrorf(rec.Name, "found null value with no namespace")
	}
	if !isStruct(v) {
		return recordErrorf(rec.Name, "a namespace declaration is incorrect, syntax should be %s but was %s", namespaceDeclarationSyntax, v)
	}

	annotations := v.Annotations()
	if len(annotations) == 0 {
		return recordErrorf(rec.Name, "found unnamespaced config")
	}

	if strings.ToLower(annotations[0]) == namespaceAnnotation {
		return c.declareNamespace(rec, annotations)
	}

	namespace := annotations[0]
	set, ok := c.content[namespace]
	if !ok {
		set = &ruleSet{}
		c.content[namespace] = set
		c.namespaceOrder = append(c.namespaceOrder, namespace)
	}

	acc := c.toSort[namespace]
	rules, err := parseRules(rec.Name, v, nil, &acc)
	if err != nil {
		return err
	}
	c.toSort[namespace] = acc
	set.rules = append(set.rules, rules...)
	return nil
}

func (c *compiler) declareNamespace(rec Record, annotations []string) error {
	v := rec.Value
	if len(annotations) != 2 {
		return recordErrorf(rec.Name, "a namespace declaration is incorrect, syntax should be %s but was %s", namespaceDeclarationSyntax, v)
	}
	namespace := annotations[1]
	if _, exists := c.priorities[namespace]; exists {
		return recordErrorf(rec.Name, "namespace %s is declared more than once", namespace)
	}

	raw, ok := v.FieldByName(prioritiesFieldName)
	if !ok || raw.IsNull() || raw.Type() != ion.ListType {
		return recordErrorf(rec.Name, "a namespace declaration is incorrect, syntax should be %s but was %s", namespaceDeclarationSyntax, v)
	}
	elements := raw.Elements()
	priorities := make([]string, 0, len(elements))
	for _, e := range elements {
		text, ok := e.Text()
		if !ok {
			return recordErrorf(rec.Name, "a namespace declaration is incorrect, syntax should be %s but was %s", namespaceDeclarationSyntax, v)
		}
		priorities = append(priorities, text)
	}
	c.priorities[namespace] = priorities
	return nil
}

// parseRules walks a content struct and returns the rule for the current
// criteria path followed by the rules of every deeper criteria-bearing
// field. The rule's values map collects only the data fields declared
// directly at this nesting level.
func parseRules(recordName string, s *ionvalue.Value, criteria []groupedCriterion, acc *[]*ruleSet) ([]*rule, error) {
	fields := s.Fields()
	if len(fields) == 0 {
		return nil, nil
	}

	values := newFieldMap()
	current := &rule{criteria: criteria, values: values}
	results := []*rule{current}

	for _, f := range fields {
		def := parseCriterion(f.Name)
		if def == nil {
			p, err := parseProperty(recordName, f.Value, acc)
			if err != nil {
				return nil, err
			}
			values.put(f.Name, p)
			continue
		}

		deeper, err := parseCriteriaRules(recordName, f.Value, criteria, acc, *def)
		if err != nil {
			return nil, err
		}
		results = append(results, deeper...)
	}

	return results, nil
}

// parseProperty builds a property from a data-tree value. Structs and lists
// containing further containers become dynamic; everything else is terminal.
func parseProperty(recordName string, v *ionvalue.Value, acc *[]*ruleSet) (property, error) {
	if isStruct(v) && anyDynamic(structMembers(v)) {
		sub, err := parseRules(recordName, v, nil, acc)
		if err != nil {
			return nil, err
		}
		set := &ruleSet{rules: sub}
		*acc = append(*acc, set)
		return &dynamicStruct{rules: set}, nil
	}

	if !v.IsNull() && v.Type() == ion.ListType && anyDynamic(v.Elements()) {
		elements := v.Elements()
		properties := make([]property, 0, len(elements))
		for _, element := range elements {
			annotations := element.Annotations()
			if len(annotations) > 0 && parseCriterion(annotations[0]) != nil {
				sub, err := parseSubField(recordName, element, acc)
				if err != nil {
					return nil, err
				}
				properties = append(properties, sub)
				continue
			}
			p, err := parseProperty(recordName, element, acc)
			if err != nil {
				return nil, err
			}
			properties = append(properties, p)
		}
		return &dynamicList{elements: properties}, nil
	}

	return &basicProperty{value: v}, nil
}

// parseSubField compiles a criteria-annotated list element. The element must
// be a struct with exactly one field named "value" or "values"; "values"
// must be list-typed so its elements can be spliced into the parent list.
func parseSubField(recordName string, element *ionvalue.Value, acc *[]*ruleSet) (*dynamicSubField, error) {
	if !isStruct(element) {
		return nil, recordErrorf(recordName, "criterion definition field must be a non-null struct but was a %s", typeName(element))
	}
	if element.Len() != 1 {
		return nil, recordErrorf(recordName, "a list sub-field criteria must contain exactly 1 value")
	}

	parsed, err := parseCriteriaRules(recordName, element, nil, acc)
	if err != nil {
		return nil, err
	}

	rules := parsed[:0]
	for _, r := range parsed {
		if r.values.len() > 0 {
			rules = append(rules, r)
		}
	}
	set := &ruleSet{rules: rules}
	*acc = append(*acc, set)

	for _, r := range rules {
		if r.values.len() != 1 {
			return nil, recordErrorf(recordName, "a list sub-field criteria must contain exactly 1 value")
		}
		name := r.values.names[0]
		if name != subFieldValueName && name != subFieldValuesName {
			return nil, recordErrorf(recordName, "a sub-list criteria must contain exactly 1 field named %q or %q but actually was %q", subFieldValueName, subFieldValuesName, name)
		}
		if name == subFieldValuesName {
			p, _ := r.values.get(subFieldValuesName)
			if !listBased(p) {
				return nil, recordErrorf(recordName, "a sub-list criteria with name %q must be a list", subFieldValuesName)
			}
		}
	}

	return &dynamicSubField{rules: set}, nil
}

// parseCriteriaRules treats the value as a criteria-bearing struct: the
// given definitions plus every annotation are parsed as OR'd criteria,
// grouped by identifier, and the struct body is compiled once per group with
// the group appended to the criteria path. Groups keep first-appearance
// order so rule order is deterministic per engine instance.
func parseCriteriaRules(recordName string, v *ionvalue.Value, criteria []groupedCriterion, acc *[]*ruleSet, additional ...criterionDefinition) ([]*rule, error) {
	if !isStruct(v) {
		return nil, recordErrorf(recordName, "criterion definition field must be a non-null struct but was a %s", typeName(v))
	}

	definitions := additional
	for _, annotation := range v.Annotations() {
		def := parseCriterion(annotation)
		if def == nil {
			return nil, recordErrorf(recordName, "could not parse 'OR' criterion from string, it must be in the format 'key-value', input: %s", annotation)
		}
		definitions = append(definitions, *def)
	}

	var order []criterionIdentifier
	grouped := make(map[criterionIdentifier][]string)
	for _, def := range definitions {
		if _, seen := grouped[def.identifier]; !seen {
			order = append(order, def.identifier)
		}
		grouped[def.identifier] = append(grouped[def.identifier], def.value)
	}

	var results []*rule
	for _, id := range order {
		path := make([]groupedCriterion, 0, len(criteria)+1)
		path = append(path, criteria...)
		path = append(path, groupedCriterion{identifier: id, values: NewValueSet(grouped[id]...)})
		rules, err := parseRules(recordName, v, path, acc)
		if err != nil {
			return nil, err
		}
		results = append(results, rules...)
	}
	return results, nil
}

func isStruct(v *ionvalue.Value) bool {
	return v != nil && !v.IsNull() && v.Type() == ion.StructType
}

// anyDynamic reports whether any value is a non-null struct or list, the
// trigger for compiling a container into a dynamic property.
func anyDynamic(values []*ionvalue.Value) bool {
	for _, v := range values {
		if !v.IsNull() && (v.Type() == ion.StructType || v.Type() == ion.ListType) {
			return true
		}
	}
	return false
}

func structMembers(v *ionvalue.Value) []*ionvalue.Value {
	fields := v.Fields()
	members := make([]*ionvalue.Value, len(fields))
	for i, f := range fields {
		members[i] = f.Value
	}
	return members
}

func typeName(v *ionvalue.Value) string {
	if v == nil || v.IsNull() {
		return "null"
	}
	return v.Type().String()
}
