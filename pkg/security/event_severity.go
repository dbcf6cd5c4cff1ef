package security

import "go.uber.org/zap/zapcore"

// Severity represents the severity level of a security event.
// It is derived from EventType, never taken from the request.
type Severity string

const (
	SeverityINFO Severity = "INFO"
	SeverityWARN Severity = "WARN"
	SeverityHIGH Severity = "HIGH"
)

// EventSeverityMap defines the fixed severity for each event type
var EventSeverityMap = map[EventType]Severity{
	EventContactSubmitted:   SeverityINFO,
	EventContactRejected:    SeverityINFO,
	EventRateLimitTriggered: SeverityWARN,
	EventCSRFViolation:      SeverityWARN,
	EventMalformedRequest:   SeverityWARN,
	EventMailDispatchFailed: SeverityHIGH,
}

// GetSeverity returns the severity for an event, WARN for unknown events
func GetSeverity(event EventType) Severity {
	if severity, ok := EventSeverityMap[event]; ok {
		return severity
	}
	return SeverityWARN
}

func (s Severity) zapLevel() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}
