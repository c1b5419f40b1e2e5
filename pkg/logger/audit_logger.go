// Package logger provides the compliance audit trail: analysis lifecycle
// events recorded as structured entries so compliance reviews can be
// reconstructed after the fact.
package logger

import (
	"time"
)

// AuditEvent identifies a compliance-relevant event.
type AuditEvent string

const (
	// Knowledge-base lifecycle
	KnowledgeLoadStart   AuditEvent = "knowledge_load_start"
	KnowledgeLoadSuccess AuditEvent = "knowledge_load_success"
	KnowledgeLoadFailure AuditEvent = "knowledge_load_failure"
	KnowledgeCleared     AuditEvent = "knowledge_cleared"

	// Analysis lifecycle
	AnalysisStart    AuditEvent = "analysis_start"
	AnalysisComplete AuditEvent = "analysis_complete"
	AnalysisBlocked  AuditEvent = "analysis_blocked"

	// Review escalations
	ReviewRequired    AuditEvent = "review_required"
	ConflictDetected  AuditEvent = "conflict_detected"
	UnknownLicense    AuditEvent = "unknown_license"
	InvalidExpression AuditEvent = "invalid_expression"
)

// AuditLogger records compliance events on top of the base logger.
type AuditLogger struct {
	*Logger
}

// NewAuditLogger creates an audit logger over a fresh base logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{Logger: New()}
}

// NewAuditLoggerWith wraps an existing base logger.
func NewAuditLoggerWith(base *Logger) *AuditLogger {
	if base == nil {
		base = New()
	}
	return &AuditLogger{Logger: base}
}

// Event records one audit event with its context fields.
func (al *AuditLogger) Event(event AuditEvent, fields map[string]interface{}) {
	entry := al.WithFields(map[string]interface{}{
		"audit_event": string(event),
		"recorded_at": time.Now().UTC().Format(time.RFC3339),
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}

	switch event {
	case KnowledgeLoadFailure, AnalysisBlocked:
		entry.Error("audit event")
	case ReviewRequired, ConflictDetected, UnknownLicense, InvalidExpression:
		entry.Warn("audit event")
	default:
		entry.Info("audit event")
	}
}
