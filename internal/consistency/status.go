package consistency

// Aggregate derives the overall verdict from the collected issues: any FAIL
// wins, then any WARNING, otherwise PASS.
func Aggregate(issues []ValidationIssue) Status {
	status := StatusPass
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityFail:
			return StatusFail
		case SeverityWarning:
			status = StatusWarning
		}
	}
	return status
}
