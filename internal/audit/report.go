package audit

import (
	"fmt"
	"strings"
)

const (
	reportTitleConstant             = "Composer Security Audit Report"
	reportGeneratedTemplateConstant = "Generated: %s"
	reportTimestampLayoutConstant   = "2006-01-02 15:04:05"
	reportSeparatorCharacter        = "="
	reportSeparatorWidthConstant    = 40
	reportProjectTemplateConstant   = "\n Project: %s"
	reportErrorTemplateConstant     = "  ERROR: %s"
	reportNoIssuesLineConstant      = "  No issues found."
	reportAdvisoryTemplateConstant  = "  - %s: %s%s%s%s%s"
	reportCVETemplateConstant       = " [%s]"
	reportSeverityTemplateConstant  = " (%s)"
	reportAffectedTemplateConstant  = " affected: %s"
	reportLinkTemplateConstant      = " %s"
	reportFooterConstant            = "\nEnd of report."
	reportLineSeparatorConstant     = "\n"
)

// BuildTextReport renders the report as plain text. Equal reports render identically.
func BuildTextReport(report AuditReport) string {
	lines := []string{
		reportTitleConstant,
		fmt.Sprintf(reportGeneratedTemplateConstant, report.GeneratedAt.Format(reportTimestampLayoutConstant)),
		strings.Repeat(reportSeparatorCharacter, reportSeparatorWidthConstant),
	}

	for _, result := range report.Results {
		lines = append(lines, fmt.Sprintf(reportProjectTemplateConstant, result.ProjectPath))

		if result.Failed() {
			lines = append(lines, fmt.Sprintf(reportErrorTemplateConstant, result.Failure.ErrorMessage))
			continue
		}

		if len(result.Advisories) == 0 {
			lines = append(lines, reportNoIssuesLineConstant)
			continue
		}

		for _, advisory := range result.Advisories {
			lines = append(lines, formatAdvisoryLine(advisory))
		}
	}

	lines = append(lines, reportFooterConstant)
	return strings.Join(lines, reportLineSeparatorConstant)
}

func formatAdvisoryLine(advisory AdvisoryRecord) string {
	return fmt.Sprintf(
		reportAdvisoryTemplateConstant,
		advisory.Package,
		advisory.Title,
		optionalSegment(reportCVETemplateConstant, advisory.CVE),
		optionalSegment(reportSeverityTemplateConstant, advisory.Severity),
		optionalSegment(reportAffectedTemplateConstant, advisory.AffectedVersions),
		optionalSegment(reportLinkTemplateConstant, advisory.Link),
	)
}

func optionalSegment(template string, value string) string {
	if len(value) == 0 {
		return ""
	}
	return fmt.Sprintf(template, value)
}
