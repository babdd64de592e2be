package ionconfig

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amzn/ion-cascading-config/ionvalue"
)

func mustManager(t *testing.T, text string) *Manager {
	t.Helper()
	m, err := FromReader("test", strings.NewReader(text))
	if err != nil {
		t.Fatalf("FromReader() error = %v, want nil", err)
	}
	return m
}

var valueComparer = cmp.Comparer(func(a, b *ionvalue.Value) bool {
	return a.Equal(b)
})

func checkValues(t *testing.T, got map[string]*ionvalue.Value, want map[string]string) {
	t.Helper()
	expected := make(map[string]*ionvalue.Value, len(want))
	for k, v := range want {
		expected[k] = ionvalue.MustReadString(v)
	}
	if diff := cmp.Diff(expected, got, valueComparer); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

const exampleConfig = `
namespace::Example::{
    prioritizedCriteria: [
        field1,
        field2,
        field3
    ]
}

Example::{
    myField: 1,
    'field1-true': {
        myField: 2,
        'field2-true': {
            myField: 3,
            'field3-true': {
                myField: 4
            }
        }
    },
    'field2-true': {
        myField: 5
    }
}
`

func TestValuesForProperties_ExampleCascade(t *testing.T) {
	manager := mustManager(t, exampleConfig)

	tests := []struct {
		name       string
		properties map[string]string
		want       string
	}{
		{name: "no criteria", properties: map[string]string{}, want: "1"},
		{name: "field1", properties: map[string]string{"field1": "true"}, want: "2"},
		{name: "field1+field2", properties: map[string]string{"field1": "true", "field2": "true"}, want: "3"},
		{name: "all", properties: map[string]string{"field1": "true", "field2": "true", "field3": "true"}, want: "4"},
		{name: "field2 only", properties: map[string]string{"field2": "true"}, want: "5"},
		{name: "field2+field3", properties: map[string]string{"field1": "false", "field2": "true", "field3": "true"}, want: "5"},
		{name: "field3 only", properties: map[string]string{"field3": "true"}, want: "1"},
		{name: "all false", properties: map[string]string{"field1": "false", "field2": "false", "field3": "false"}, want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := manager.ValuesForProperties("Example", tt.properties)
			checkValues(t, got, map[string]string{"myField": tt.want})
		})
	}
}

const skuConfig = `
namespace::Skus::{
    prioritizedCriteria: [
        category,
        seller,
        sku
    ]
}

Skus::{
    myValue: 1,
    'category-001234321': {
        myValue: 2,
        'seller-1234': {
            myValue: 4
        }
    },
    'seller-1234': {
        myValue: 3
    },
    'sku-B0000SKUU1': {
        myValue: 5
    }
}
`

func TestValuesForProperties_SkuSpecificity(t *testing.T) {
	manager := mustManager(t, skuConfig)

	tests := []struct {
		name       string
		properties map[string]string
		want       string
	}{
		{name: "baseline", properties: map[string]string{}, want: "1"},
		{name: "category", properties: map[string]string{"category": "001234321"}, want: "2"},
		{name: "seller", properties: map[string]string{"seller": "1234"}, want: "3"},
		{name: "category+seller", properties: map[string]string{"category": "001234321", "seller": "1234"}, want: "4"},
		// sku alone outranks every combination of category and seller
		{name: "sku wins", properties: map[string]string{"sku": "B0000SKUU1", "category": "001234321", "seller": "1234"}, want: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := manager.ValuesForProperties("Skus", tt.properties)
			checkValues(t, got, map[string]string{"myValue": tt.want})
		})
	}
}

func TestValuesForPredicates_AlwaysTrueIsLastWins(t *testing.T) {
	manager := mustManager(t, skuConfig)
	always := func(ValueSet) bool { return true }
	predicates := map[string]CriteriaPredicate{
		"category": always,
		"seller":   always,
		"sku":      always,
	}

	got := manager.ValuesForPredicates("Skus", predicates)
	// with every criterion satisfied the most specific assignment wins
	checkValues(t, got, map[string]string{"myValue": "5"})
}

const productsConfig = `
namespace::Products::{
    prioritizedCriteria: [
        websiteFeatureGroup,
        department,
        category,
        subcategory,
        sku
    ]
}

Products::{
    layout: [
        brand,
        title,
        customerReviews,
        {
            name: "price",
            template: "default",
            'websiteFeatureGroup-wireless': {
                template: "wireless"
            },
            modules: [
                "businessPricing",
                "rebates",
                "quantityPrice",
                "points",
                "globalStoreIfd",
                {
                    name: "promoMessaging",
                    template: "defaultTemplate",
                    'category-555': {
                        template: "customTemplate1"
                    }
                },
                'department-111'::{
                    value: "samplingBuyBox"
                }
            ]
        }
    ]
}
`

func TestValuesForProperties_ProductsLayout(t *testing.T) {
	manager := mustManager(t, productsConfig)
	properties := map[string]string{
		"websiteFeatureGroup": "wireless",
		"department":          "111",
		"category":            "555",
		"subcategory":         "1234",
	}

	got := manager.ValuesForProperties("Products", properties)

	expected := ionvalue.MustReadString(`
[
    brand,
    title,
    customerReviews,
    {
        name: "price",
        template: "wireless",
        modules: [
            "businessPricing",
            "rebates",
            "quantityPrice",
            "points",
            "globalStoreIfd",
            {name: "promoMessaging", template: "customTemplate1"},
            "samplingBuyBox"
        ]
    }
]`)

	layout, ok := got["layout"]
	if !ok {
		t.Fatalf("layout missing from result %v", got)
	}
	if !layout.Equal(expected) {
		t.Errorf("layout = %s, want %s", layout, expected)
	}
	if len(got) != 1 {
		t.Errorf("len(result) = %d, want 1", len(got))
	}
}

func TestValuesForProperties_ProductsLayoutWithoutCriteria(t *testing.T) {
	manager := mustManager(t, productsConfig)
	got := manager.ValuesForProperties("Products", nil)

	expected := ionvalue.MustReadString(`
[
    brand,
    title,
    customerReviews,
    {
        name: "price",
        template: "default",
        modules: [
            "businessPricing",
            "rebates",
            "quantityPrice",
            "points",
            "globalStoreIfd",
            {name: "promoMessaging", template: "defaultTemplate"}
        ]
    }
]`)

	if layout := got["layout"]; !layout.Equal(expected) {
		t.Errorf("layout = %s, want %s", layout, expected)
	}
}

const splicingConfig = `
namespace::Departments::{
    prioritizedCriteria: [department]
}

Departments::{
    sequence: [
        123,
        'department-107'::{
            values: [456, 789]
        },
        999
    ]
}
`

func TestListSplicing(t *testing.T) {
	manager := mustManager(t, splicingConfig)

	matched := manager.ValuesForProperties("Departments", map[string]string{"department": "107"})
	checkValues(t, matched, map[string]string{"sequence": "[123, 456, 789, 999]"})

	unmatched := manager.ValuesForProperties("Departments", map[string]string{"department": "200"})
	checkValues(t, unmatched, map[string]string{"sequence": "[123, 999]"})

	missing := manager.ValuesForProperties("Departments", nil)
	checkValues(t, missing, map[string]string{"sequence": "[123, 999]"})
}

const orGroupingConfig = `
namespace::Colors::{
    prioritizedCriteria: [color]
}

Colors::{
    choices: [
        'color-blue'::'color-red'::{
            value: 1
        }
    ],
    'color-blue': 'color-red'::{
        myField: 2
    }
}
`

func TestOrGrouping_NoDuplication(t *testing.T) {
	manager := mustManager(t, orGroupingConfig)

	blue := manager.ValuesForProperties("Colors", map[string]string{"color": "blue"})
	checkValues(t, blue, map[string]string{"choices": "[1]", "myField": "2"})

	red := manager.ValuesForProperties("Colors", map[string]string{"color": "red"})
	checkValues(t, red, map[string]string{"choices": "[1]", "myField": "2"})

	// a predicate passing for both disjuncts still contributes once
	both := manager.ValuesForPredicates("Colors", map[string]CriteriaPredicate{
		"color": FromValues("blue", "red"),
	})
	checkValues(t, both, map[string]string{"choices": "[1]", "myField": "2"})

	green := manager.ValuesForProperties("Colors", map[string]string{"color": "green"})
	checkValues(t, green, map[string]string{"choices": "[]"})
}

const negationConfig = `
namespace::Negation::{
    prioritizedCriteria: [color]
}

Negation::{
    example: "default",
    '!color-blue': {
        example: "not blue"
    }
}
`

func TestNegatedCriteria(t *testing.T) {
	manager := mustManager(t, negationConfig)

	blue := manager.ValuesForProperties("Negation", map[string]string{"color": "blue"})
	checkValues(t, blue, map[string]string{"example": `"default"`})

	red := manager.ValuesForProperties("Negation", map[string]string{"color": "red"})
	checkValues(t, red, map[string]string{"example": `"not blue"`})

	// a missing predicate is always false, so the negated rule applies
	none := manager.ValuesForProperties("Negation", nil)
	checkValues(t, none, map[string]string{"example": `"not blue"`})
}

func TestEvaluation_MissingNamespaceIsEmpty(t *testing.T) {
	manager := mustManager(t, exampleConfig)
	got := manager.ValuesForProperties("NoSuchNamespace", map[string]string{"field1": "true"})
	if len(got) != 0 {
		t.Errorf("len(result) = %d, want 0", len(got))
	}
}

func TestEvaluation_DeclaredNamespaceWithoutContent(t *testing.T) {
	manager := mustManager(t, "namespace::Empty::{prioritizedCriteria: [a]}")
	got := manager.ValuesForProperties("Empty", map[string]string{"a": "1"})
	if len(got) != 0 {
		t.Errorf("len(result) = %d, want 0", len(got))
	}
}

// deepConfig builds a namespace with 20 priorities where comparing the two
// rules by their weighted scores requires values beyond 64-bit range
// (20^20 > 2^63).
func deepConfig() string {
	var sb strings.Builder
	sb.WriteString("namespace::Deep::{prioritizedCriteria: [")
	for i := 0; i < 20; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "c%02d", i)
	}
	sb.WriteString("]}\n")

	sb.WriteString("Deep::{\n")
	sb.WriteString("  'c19-x': { winner: \"high\" },\n")
	// chain of every lower criterion combined
	for i := 18; i >= 0; i-- {
		fmt.Fprintf(&sb, "%s'c%02d-x': {\n", strings.Repeat("  ", 19-i), i)
	}
	sb.WriteString(strings.Repeat("  ", 20))
	sb.WriteString("winner: \"low\"\n")
	for i := 0; i <= 18; i++ {
		sb.WriteString(strings.Repeat("  ", 19-(18-i)))
		sb.WriteString("}\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func TestPriorityScore_BeyondInt64(t *testing.T) {
	manager := mustManager(t, deepConfig())
	properties := make(map[string]string, 20)
	for i := 0; i < 20; i++ {
		properties[fmt.Sprintf("c%02d", i)] = "x"
	}

	got := manager.ValuesForProperties("Deep", properties)
	// the single highest-priority criterion outranks all 19 lower ones combined
	checkValues(t, got, map[string]string{"winner": `"high"`})
}

// nestedOrConfig nests ten criteria levels, each an OR over four values.
func nestedOrConfig() string {
	var sb strings.Builder
	sb.WriteString("namespace::NestedOr::{prioritizedCriteria: [")
	for i := 1; i <= 10; i++ {
		if i > 1 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "level%d", i)
	}
	sb.WriteString("]}\n")

	sb.WriteString("NestedOr::{\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&sb, "'level%d-00': 'level%d-01'::'level%d-02'::'level%d-03'::{\n", i, i, i, i)
	}
	sb.WriteString("myValue: true\n")
	sb.WriteString(strings.Repeat("}\n", 11))
	return sb.String()
}

func TestDeeplyNestedOrCriteria(t *testing.T) {
	manager := mustManager(t, nestedOrConfig())

	properties := make(map[string]string, 10)
	for i := 1; i <= 10; i++ {
		properties[fmt.Sprintf("level%d", i)] = "00"
	}
	got := manager.ValuesForProperties("NestedOr", properties)
	checkValues(t, got, map[string]string{"myValue": "true"})

	// any level failing breaks the conjunction
	properties["level5"] = "99"
	if got := manager.ValuesForProperties("NestedOr", properties); len(got) != 0 {
		t.Errorf("len(result) = %d, want 0", len(got))
	}
}

func TestEvaluation_Idempotent(t *testing.T) {
	manager := mustManager(t, productsConfig)
	properties := map[string]string{"websiteFeatureGroup": "wireless", "category": "555"}

	first := manager.ValuesForProperties("Products", properties)
	second := manager.ValuesForProperties("Products", properties)
	if diff := cmp.Diff(first, second, valueComparer); diff != "" {
		t.Errorf("repeated evaluation differs (-first +second):\n%s", diff)
	}
}

func TestEvaluation_ResultIsDetachedClone(t *testing.T) {
	manager := mustManager(t, exampleConfig)
	first := manager.ValuesForProperties("Example", nil)
	second := manager.ValuesForProperties("Example", nil)
	if first["myField"] == second["myField"] {
		t.Errorf("evaluations share the same value instance; results must be clones")
	}
}

func TestPredicate_InvokedOncePerGroupedCriterion(t *testing.T) {
	manager := mustManager(t, orGroupingConfig)

	calls := 0
	counting := func(values ValueSet) bool {
		calls++
		return values.Contains("blue")
	}
	manager.ValuesForPredicates("Colors", map[string]CriteriaPredicate{"color": counting})

	// two rule sets scan one grouped criterion each: the top-level OR rule
	// and the list sub-field's rule
	if calls != 2 {
		t.Errorf("predicate calls = %d, want 2", calls)
	}
}

func TestMultiHyphenCriterionValues(t *testing.T) {
	manager := mustManager(t, `
namespace::Hyphens::{prioritizedCriteria: [category]}
Hyphens::{
    myField: 123,
    'category-value-has-multiple-hyphens': {
        myField: 456
    }
}
`)
	got := manager.ValuesForProperties("Hyphens", map[string]string{"category": "value-has-multiple-hyphens"})
	checkValues(t, got, map[string]string{"myField": "456"})
}

func TestCustomConditionPredicate(t *testing.T) {
	manager := mustManager(t, `
namespace::Flags::{prioritizedCriteria: [featureFlag]}
Flags::{
    greeting: "plain",
    'featureFlag-EXAMPLE_12345:T1': {
        greeting: "treatment"
    }
}
`)

	inTreatment := FromCondition(func(flag string) bool {
		name, treatment, ok := strings.Cut(flag, ":")
		return ok && name == "EXAMPLE_12345" && treatment == "T1"
	})
	got := manager.ValuesForPredicates("Flags", map[string]CriteriaPredicate{"featureFlag": inTreatment})
	checkValues(t, got, map[string]string{"greeting": `"treatment"`})

	control := FromCondition(func(flag string) bool { return false })
	got = manager.ValuesForPredicates("Flags", map[string]CriteriaPredicate{"featureFlag": control})
	checkValues(t, got, map[string]string{"greeting": `"plain"`})
}
