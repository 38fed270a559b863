package audit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depaudit/internal/audit"
)

func TestBuildTextReport(testInstance *testing.T) {
	generatedAt := time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		results        []audit.ProjectResult
		expectedReport string
	}{
		{
			name: "mixed_results",
			results: []audit.ProjectResult{
				{
					ProjectPath: "/srv/app",
					Advisories: []audit.AdvisoryRecord{
						{Package: "acme/lib", Title: "XSS", CVE: "CVE-2020-1", Severity: "high", AffectedVersions: "<1.2", Link: "https://example.test"},
						{Package: "acme/other", Title: "Unknown"},
					},
				},
				{ProjectPath: "/srv/other"},
				{
					ProjectPath: "/srv/broken",
					Failure:     &audit.ProjectFailure{ErrorMessage: "Could not parse JSON output from composer audit.", RawOutput: "oops"},
				},
			},
			expectedReport: "Composer Security Audit Report\n" +
				"Generated: 2026-10-16 09:30:00\n" +
				"========================================\n" +
				"\n Project: /srv/app\n" +
				"  - acme/lib: XSS [CVE-2020-1] (high) affected: <1.2 https://example.test\n" +
				"  - acme/other: Unknown\n" +
				"\n Project: /srv/other\n" +
				"  No issues found.\n" +
				"\n Project: /srv/broken\n" +
				"  ERROR: Could not parse JSON output from composer audit.\n" +
				"\nEnd of report.",
		},
		{
			name: "only_some_optional_segments",
			results: []audit.ProjectResult{
				{
					ProjectPath: "/srv/app",
					Advisories: []audit.AdvisoryRecord{
						{Package: "acme/lib", Title: "Open redirect", Severity: "low", Link: "https://example.test/3"},
					},
				},
			},
			expectedReport: "Composer Security Audit Report\n" +
				"Generated: 2026-10-16 09:30:00\n" +
				"========================================\n" +
				"\n Project: /srv/app\n" +
				"  - acme/lib: Open redirect (low) https://example.test/3\n" +
				"\nEnd of report.",
		},
		{
			name:    "no_projects",
			results: nil,
			expectedReport: "Composer Security Audit Report\n" +
				"Generated: 2026-10-16 09:30:00\n" +
				"========================================\n" +
				"\nEnd of report.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			report := audit.AuditReport{GeneratedAt: generatedAt, Results: testCase.results}
			require.Equal(subtest, testCase.expectedReport, audit.BuildTextReport(report))
			require.Equal(subtest, audit.BuildTextReport(report), audit.BuildTextReport(report))
		})
	}
}
