// Package compliance derives the tri-state document-readiness signal for an
// application. The signal is a pure read model computed on demand from the
// current document set; the application status is the authoritative write
// model and is never inferred from it.
package compliance

import (
	"permitdesk/internal/application"
	"permitdesk/internal/document"
)

// Signal summarizes whether an application's document set satisfies its
// requirement profile.
type Signal string

const (
	SignalRed    Signal = "RED"
	SignalYellow Signal = "YELLOW"
	SignalGreen  Signal = "GREEN"
)

// Report is the full evaluation result. Missing, Rejected, and Pending all
// surface as YELLOW but callers get the specific lists so dashboards can tell
// "waiting on the applicant" from "waiting on staff".
type Report struct {
	Signal   Signal          `json:"signal"`
	Missing  []document.Type `json:"missing"`
	Rejected []document.Type `json:"rejected"`
	Pending  []document.Type `json:"pending"`
}

// Evaluate reduces a profile and its current documents to a Report.
// This is pure domain logic - no I/O, no side effects.
//
// Priority order (first match wins):
//  1. No documents at all -> RED.
//  2. A required type with no current document -> YELLOW (missing).
//  3. A current document rejected -> YELLOW (needs resubmission).
//  4. A current document pending review -> YELLOW.
//  5. Everything supplied and approved -> GREEN.
func Evaluate(profile application.Profile, current []document.Document) Report {
	report := Report{
		Missing:  []document.Type{},
		Rejected: []document.Type{},
		Pending:  []document.Type{},
	}

	byType := make(map[document.Type]document.Document, len(current))
	for _, doc := range current {
		byType[doc.Type] = doc
	}

	for _, required := range document.RequiredOnly(document.RequiredTypes(profile)) {
		if _, ok := byType[required]; !ok {
			report.Missing = append(report.Missing, required)
		}
	}

	// Rejected and pending checks cover every supplied document, required or
	// optional: an optional document that was uploaded still has to clear
	// review before the set counts as green.
	for _, doc := range current {
		switch doc.Status {
		case document.StatusRejected:
			report.Rejected = append(report.Rejected, doc.Type)
		case document.StatusPending:
			report.Pending = append(report.Pending, doc.Type)
		}
	}

	switch {
	case len(current) == 0:
		report.Signal = SignalRed
	case len(report.Missing) > 0 || len(report.Rejected) > 0 || len(report.Pending) > 0:
		report.Signal = SignalYellow
	default:
		report.Signal = SignalGreen
	}
	return report
}
