package audit

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/CycloneDX/cyclonedx-go"
)

const (
	composerPackageURLTemplateConstant = "pkg:composer/%s"
	projectPropertyNameConstant        = "depaudit:project"
	cycloneDXEncodeErrorTemplate       = "encode CycloneDX report: %w"
)

var cycloneDXSeverities = map[string]cyclonedx.Severity{
	string(cyclonedx.SeverityCritical): cyclonedx.SeverityCritical,
	string(cyclonedx.SeverityHigh):     cyclonedx.SeverityHigh,
	string(cyclonedx.SeverityMedium):   cyclonedx.SeverityMedium,
	"moderate":                         cyclonedx.SeverityMedium,
	string(cyclonedx.SeverityLow):      cyclonedx.SeverityLow,
	string(cyclonedx.SeverityInfo):     cyclonedx.SeverityInfo,
	string(cyclonedx.SeverityNone):     cyclonedx.SeverityNone,
}

// WriteCycloneDX encodes the advisories of every successfully audited project as a CycloneDX JSON BOM.
func WriteCycloneDX(report AuditReport, writer io.Writer) error {
	bom := BuildCycloneDXBOM(report)

	encoder := cyclonedx.NewBOMEncoder(writer, cyclonedx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	if encodeError := encoder.Encode(bom); encodeError != nil {
		return fmt.Errorf(cycloneDXEncodeErrorTemplate, encodeError)
	}
	return nil
}

// BuildCycloneDXBOM maps the report into a BOM with one library component per package
// and one vulnerability per advisory. Failed projects contribute nothing.
func BuildCycloneDXBOM(report AuditReport) *cyclonedx.BOM {
	bom := cyclonedx.NewBOM()
	bom.Metadata = &cyclonedx.Metadata{Timestamp: report.GeneratedAt.Format(time.RFC3339)}

	components := make([]cyclonedx.Component, 0)
	knownComponents := map[string]struct{}{}
	vulnerabilities := make([]cyclonedx.Vulnerability, 0)

	for _, result := range report.Results {
		if result.Failed() {
			continue
		}
		for _, advisory := range result.Advisories {
			packageURL := fmt.Sprintf(composerPackageURLTemplateConstant, advisory.Package)
			if _, known := knownComponents[packageURL]; !known {
				knownComponents[packageURL] = struct{}{}
				components = append(components, cyclonedx.Component{
					BOMRef:     packageURL,
					Type:       cyclonedx.ComponentTypeLibrary,
					Name:       advisory.Package,
					PackageURL: packageURL,
				})
			}
			vulnerabilities = append(vulnerabilities, buildVulnerability(result.ProjectPath, packageURL, advisory))
		}
	}

	if len(components) > 0 {
		bom.Components = &components
	}
	if len(vulnerabilities) > 0 {
		bom.Vulnerabilities = &vulnerabilities
	}
	return bom
}

func buildVulnerability(projectPath string, packageURL string, advisory AdvisoryRecord) cyclonedx.Vulnerability {
	vulnerabilityID := advisory.CVE
	if len(vulnerabilityID) == 0 {
		vulnerabilityID = advisory.Title
	}

	affects := cyclonedx.Affects{Ref: packageURL}
	if len(advisory.AffectedVersions) > 0 {
		affectedRanges := []cyclonedx.AffectedVersions{{
			Range:  advisory.AffectedVersions,
			Status: cyclonedx.VulnerabilityStatusAffected,
		}}
		affects.Range = &affectedRanges
	}
	affectsList := []cyclonedx.Affects{affects}
	properties := []cyclonedx.Property{{Name: projectPropertyNameConstant, Value: projectPath}}

	vulnerability := cyclonedx.Vulnerability{
		ID:          vulnerabilityID,
		Description: advisory.Title,
		Affects:     &affectsList,
		Properties:  &properties,
	}

	if len(advisory.Link) > 0 {
		advisories := []cyclonedx.Advisory{{Title: advisory.Title, URL: advisory.Link}}
		vulnerability.Advisories = &advisories
	}

	if len(advisory.Severity) > 0 {
		ratings := []cyclonedx.VulnerabilityRating{{Severity: mapSeverity(advisory.Severity)}}
		vulnerability.Ratings = &ratings
	}

	return vulnerability
}

func mapSeverity(severity string) cyclonedx.Severity {
	if mapped, known := cycloneDXSeverities[strings.ToLower(strings.TrimSpace(severity))]; known {
		return mapped
	}
	return cyclonedx.SeverityUnknown
}
