package audit_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depaudit/internal/audit"
)

const (
	composerAuditOutputConstant = `{
  "advisories": {
    "zeta/http": [
      {
        "advisoryId": "PKSA-1",
        "packageName": "zeta/http",
        "affectedVersions": ">=1.0,<1.4.2",
        "title": "Request smuggling",
        "cve": "CVE-2024-0001",
        "link": "https://example.test/advisories/1",
        "severity": "high"
      }
    ],
    "acme/templating": {
      "0": {"title": "Sandbox escape", "cve": null, "cveID": "CVE-2023-0002", "severity": "critical"},
      "1": {"advisoryTitle": "XSS in filters", "advisoryLink": "https://example.test/2", "affetedVersionsConstraint": "<3.0"}
    }
  },
  "abandoned": {}
}`
)

func TestParseAuditOutputNormalizesAdvisories(testInstance *testing.T) {
	records, parseError := audit.ParseAuditOutput(composerAuditOutputConstant)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, []audit.AdvisoryRecord{
		{
			Package:          "zeta/http",
			Title:            "Request smuggling",
			CVE:              "CVE-2024-0001",
			Link:             "https://example.test/advisories/1",
			Severity:         "high",
			AffectedVersions: ">=1.0,<1.4.2",
		},
		{
			Package:  "acme/templating",
			Title:    "Sandbox escape",
			CVE:      "CVE-2023-0002",
			Severity: "critical",
		},
		{
			Package:          "acme/templating",
			Title:            "XSS in filters",
			Link:             "https://example.test/2",
			AffectedVersions: "<3.0",
		},
	}, records)
}

func TestParseAuditOutputShapes(testInstance *testing.T) {
	testCases := []struct {
		name             string
		rawOutput        string
		expectedPackages []string
		expectedTitles   []string
	}{
		{
			name:      "empty_advisories_list",
			rawOutput: `{"advisories": []}`,
		},
		{
			name:      "no_advisories_key",
			rawOutput: `{"abandoned": {"old/pkg": null}}`,
		},
		{
			name:      "array_root",
			rawOutput: `[]`,
		},
		{
			name:             "nested_advisory_report",
			rawOutput:        `{"advisory-report": {"advisories": {"acme/lib": [{"title": "Nested"}]}}}`,
			expectedPackages: []string{"acme/lib"},
			expectedTitles:   []string{"Nested"},
		},
		{
			name:             "top_level_preferred_over_nested",
			rawOutput:        `{"advisory-report": {"advisories": {"nested/lib": [{"title": "Nested"}]}}, "advisories": {"top/lib": [{"title": "Top"}]}}`,
			expectedPackages: []string{"top/lib"},
			expectedTitles:   []string{"Top"},
		},
		{
			name:             "null_top_level_falls_through",
			rawOutput:        `{"advisories": null, "advisory-report": {"advisories": {"nested/lib": [{"title": "Nested"}]}}}`,
			expectedPackages: []string{"nested/lib"},
			expectedTitles:   []string{"Nested"},
		},
		{
			name:             "missing_title_defaults_to_unknown",
			rawOutput:        `{"advisories": {"acme/lib": [{"cve": "CVE-1"}]}}`,
			expectedPackages: []string{"acme/lib"},
			expectedTitles:   []string{"Unknown"},
		},
		{
			name:             "non_object_items_skipped",
			rawOutput:        `{"advisories": {"acme/lib": ["text", 3, null, {"title": "Kept"}], "other/lib": "scalar"}}`,
			expectedPackages: []string{"acme/lib"},
			expectedTitles:   []string{"Kept"},
		},
		{
			name:             "package_key_order_preserved",
			rawOutput:        `{"advisories": {"zz/last": [{"title": "A"}], "aa/first": [{"title": "B"}], "mm/middle": [{"title": "C"}]}}`,
			expectedPackages: []string{"zz/last", "aa/first", "mm/middle"},
			expectedTitles:   []string{"A", "B", "C"},
		},
		{
			name:             "surrounding_whitespace",
			rawOutput:        "\n  {\"advisories\": {\"acme/lib\": [{\"title\": \"Padded\"}]}}\n\n",
			expectedPackages: []string{"acme/lib"},
			expectedTitles:   []string{"Padded"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			records, parseError := audit.ParseAuditOutput(testCase.rawOutput)
			require.NoError(subtest, parseError)

			packages := make([]string, 0, len(records))
			titles := make([]string, 0, len(records))
			for _, record := range records {
				packages = append(packages, record.Package)
				titles = append(titles, record.Title)
			}
			require.Equal(subtest, append([]string{}, testCase.expectedPackages...), packages)
			require.Equal(subtest, append([]string{}, testCase.expectedTitles...), titles)
		})
	}
}

func TestParseAuditOutputConvertsScalarFields(testInstance *testing.T) {
	records, parseError := audit.ParseAuditOutput(`{"advisories": {"acme/lib": [{"title": 42, "cve": "", "cveID": "CVE-9", "severity": true, "link": {"href": "x"}, "advisoryLink": "https://example.test"}]}}`)
	require.NoError(testInstance, parseError)
	require.Len(testInstance, records, 1)
	require.Equal(testInstance, "42", records[0].Title)
	require.Equal(testInstance, "CVE-9", records[0].CVE)
	require.Equal(testInstance, "1", records[0].Severity)
	require.Equal(testInstance, "https://example.test", records[0].Link)
}

func TestParseAuditOutputTreatsFalseAsAbsent(testInstance *testing.T) {
	records, parseError := audit.ParseAuditOutput(`{"advisories": {"a/b": [{"title": "T", "severity": false, "cve": false, "cveID": "CVE-7", "link": false}]}}`)
	require.NoError(testInstance, parseError)
	require.Len(testInstance, records, 1)
	require.Empty(testInstance, records[0].Severity)
	require.Empty(testInstance, records[0].Link)
	require.Equal(testInstance, "CVE-7", records[0].CVE)

	reportText := audit.BuildTextReport(audit.AuditReport{
		GeneratedAt: time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC),
		Results:     []audit.ProjectResult{{ProjectPath: "/srv/app", Advisories: records}},
	})
	require.Contains(testInstance, reportText, "  - a/b: T [CVE-7]\n")
}

func TestParseAuditOutputRejectsNonJSON(testInstance *testing.T) {
	testCases := []struct {
		name      string
		rawOutput string
	}{
		{name: "empty", rawOutput: ""},
		{name: "plain_text", rawOutput: "Composer could not find a composer.json file in /srv/app"},
		{name: "string_root", rawOutput: `"advisories"`},
		{name: "number_root", rawOutput: `12`},
		{name: "null_root", rawOutput: `null`},
		{name: "truncated_object", rawOutput: `{"advisories": {`},
		{name: "trailing_garbage", rawOutput: `{"advisories": []} trailing`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			_, parseError := audit.ParseAuditOutput(testCase.rawOutput)
			require.ErrorIs(subtest, parseError, audit.ErrUnparseableOutput)
		})
	}
}

func TestTruncateRawOutput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		rawOutput     string
		expectedRunes int
	}{
		{name: "short_untouched", rawOutput: "warning", expectedRunes: 7},
		{name: "exact_limit", rawOutput: strings.Repeat("a", 5000), expectedRunes: 5000},
		{name: "long_truncated", rawOutput: strings.Repeat("b", 7000), expectedRunes: 5000},
		{name: "multibyte_counted_as_characters", rawOutput: strings.Repeat("é", 5001), expectedRunes: 5000},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			truncated := audit.TruncateRawOutput(testCase.rawOutput)
			require.Len(subtest, []rune(truncated), testCase.expectedRunes)
			require.True(subtest, strings.HasPrefix(testCase.rawOutput, truncated))
		})
	}
}

func TestTruncateRawOutputKeepsInvalidBytes(testInstance *testing.T) {
	rawOutput := "\xff" + strings.Repeat("c", 5000)

	truncated := audit.TruncateRawOutput(rawOutput)
	require.Equal(testInstance, "\xff"+strings.Repeat("c", 4999), truncated)
	require.NotContains(testInstance, truncated, "\uFFFD")
}
