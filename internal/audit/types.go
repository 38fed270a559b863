package audit

import (
	"fmt"
	"time"
)

const (
	exitStatusSuccessLabelConstant  = "SUCCESS"
	exitStatusFailureLabelConstant  = "FAILURE"
	exitStatusInvalidLabelConstant  = "INVALID"
	exitStatusErrorTemplateConstant = "audit finished with status %s"
)

// AdvisoryRecord is one normalized advisory reported for a package. Optional fields are empty when absent.
type AdvisoryRecord struct {
	Package          string
	Title            string
	CVE              string
	Link             string
	Severity         string
	AffectedVersions string
}

// ProjectFailure describes why a project could not be audited.
type ProjectFailure struct {
	ErrorMessage string
	RawOutput    string
}

// ProjectResult holds the outcome of auditing a single project.
// A nil Failure means the audit succeeded and Advisories lists its findings.
type ProjectResult struct {
	ProjectPath string
	Advisories  []AdvisoryRecord
	Failure     *ProjectFailure
}

// Failed reports whether the project could not be audited.
func (result ProjectResult) Failed() bool {
	return result.Failure != nil
}

// AuditReport is the ordered set of project results produced by a run.
type AuditReport struct {
	GeneratedAt time.Time
	Results     []ProjectResult
}

// ExitStatus is the overall outcome of a run.
type ExitStatus int

// Run outcomes, valued as process exit codes.
const (
	ExitStatusSuccess ExitStatus = 0
	ExitStatusFailure ExitStatus = 1
	ExitStatusInvalid ExitStatus = 2
)

// Code returns the process exit code for the status.
func (status ExitStatus) Code() int {
	return int(status)
}

// String returns the upper-case status label.
func (status ExitStatus) String() string {
	switch status {
	case ExitStatusSuccess:
		return exitStatusSuccessLabelConstant
	case ExitStatusInvalid:
		return exitStatusInvalidLabelConstant
	default:
		return exitStatusFailureLabelConstant
	}
}

// ExitStatusError carries a non-success run status up to the process entry point.
type ExitStatusError struct {
	Status ExitStatus
}

// Error describes the status.
func (statusError ExitStatusError) Error() string {
	return fmt.Sprintf(exitStatusErrorTemplateConstant, statusError.Status)
}

// DetermineExitStatus returns ExitStatusFailure when any project failed and ExitStatusSuccess otherwise.
func DetermineExitStatus(results []ProjectResult) ExitStatus {
	for _, result := range results {
		if result.Failed() {
			return ExitStatusFailure
		}
	}
	return ExitStatusSuccess
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// RunOptions controls a single run.
type RunOptions struct {
	SendReport bool
}

// RunOutcome summarizes a finished run. Report and ReportText are empty for ExitStatusInvalid.
type RunOutcome struct {
	Status     ExitStatus
	Report     AuditReport
	ReportText string
}
