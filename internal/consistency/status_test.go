package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	fail := ValidationIssue{Severity: SeverityFail}
	warn := ValidationIssue{Severity: SeverityWarning}

	tests := []struct {
		name   string
		issues []ValidationIssue
		want   Status
	}{
		{name: "no issues", issues: nil, want: StatusPass},
		{name: "single warning", issues: []ValidationIssue{warn}, want: StatusWarning},
		{name: "warnings only", issues: []ValidationIssue{warn, warn}, want: StatusWarning},
		{name: "single fail", issues: []ValidationIssue{fail}, want: StatusFail},
		{name: "fail after warning", issues: []ValidationIssue{warn, fail}, want: StatusFail},
		{name: "warning after fail", issues: []ValidationIssue{fail, warn}, want: StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.issues))
		})
	}
}

func TestCompareFieldRules(t *testing.T) {
	rules := map[string]Rule{}
	for _, r := range DefaultRules(DefaultThresholds()) {
		rules[r.Label] = r
	}

	t.Run("every rule has a label and noun", func(t *testing.T) {
		assert.Len(t, rules, 8)
		for label, r := range rules {
			assert.NotEmpty(t, r.Noun, label)
		}
	})

	t.Run("numeric document value that fails to parse is skipped", func(t *testing.T) {
		assert.Nil(t, compareField(rules["Quantity"], "n/a", true, "50"))
	})

	t.Run("mode of transport absence is silent", func(t *testing.T) {
		assert.Nil(t, compareField(rules["Mode of Transport"], "", false, "Sea"))
	})

	t.Run("containment ignores case", func(t *testing.T) {
		assert.Nil(t, compareField(rules["Destination Country"], "new york, usa", true, "USA"))
	})

	t.Run("hs code shipment value that strips to empty imposes nothing", func(t *testing.T) {
		assert.Nil(t, compareField(rules["HS Code"], "", false, ". ."))
	})
}

func TestComparisonString(t *testing.T) {
	assert.Equal(t, "semantic", CompareSemantic.String())
	assert.Equal(t, "unknown", Comparison(42).String())
}
