// Package audit runs composer audit across configured PHP projects and reports the advisories found.
//
// Service drives a run: one subprocess per project, JSON normalization into AdvisoryRecord values,
// a text report on the output writer, optional delivery through a ReportMailer and an optional
// CycloneDX export. CommandBuilder wires the Service into the depaudit cobra tree.
package audit
