package entity

import (
	"fmt"
	"time"
)

// AutomationResult is the terminal artifact of one orchestration run.
// It is always returned, even on fatal failures, so callers never see a
// bare error for in-page issues.
type AutomationResult struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Provider     string            `json:"provider"`
	PortalURL    string            `json:"portal_url"`
	FieldsFilled int               `json:"fields_filled"`
	TotalFields  int               `json:"total_fields"`
	SuccessRate  string            `json:"success_rate"`
	Outcomes     []FillOutcome     `json:"outcomes"`
	Screenshots  []string          `json:"screenshots"`
	SessionData  map[string]string `json:"session_data"`
	NextSteps    []string          `json:"next_steps"`
	Error        string            `json:"error,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// NewAutomationResult aggregates per-field outcomes into the final result.
// Success and SuccessRate are always computed here, never tracked
// independently. successThreshold is the minimum number of filled fields
// counted as a successful run (the historical policy is 1).
func NewAutomationResult(provider, portalURL string, outcomes []FillOutcome, screenshots []string, sessionData map[string]string, successThreshold int) AutomationResult {
	if successThreshold < 1 {
		successThreshold = 1
	}

	filled := 0
	for _, o := range outcomes {
		if o.Succeeded {
			filled++
		}
	}

	total := len(outcomes)
	rate := "0.0%"
	if total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(filled)/float64(total)*100)
	}

	res := AutomationResult{
		Success:      filled >= successThreshold,
		Provider:     provider,
		PortalURL:    portalURL,
		FieldsFilled: filled,
		TotalFields:  total,
		SuccessRate:  rate,
		Outcomes:     outcomes,
		Screenshots:  screenshots,
		SessionData:  sessionData,
		Timestamp:    time.Now(),
	}

	if res.Success {
		res.Message = fmt.Sprintf("Automation complete: %d/%d fields filled. The form is ready for manual review and submission.", filled, total)
		res.NextSteps = []string{
			"Review all filled information for accuracy",
			"Complete the captcha manually if one is shown",
			"Click submit to complete your application",
			"Save the application reference number",
		}
	} else {
		res.Message = fmt.Sprintf("Automation filled %d/%d fields, below the success threshold of %d.", filled, total, successThreshold)
		res.NextSteps = []string{
			"Fill the remaining fields manually on the portal",
			"Submit the form yourself once complete",
		}
	}

	return res
}

// FailedResult builds the terminal result for runs that never reached the
// filling phase (driver unavailable, navigation setup failure).
func FailedResult(provider, portalURL string, sessionData map[string]string, screenshots []string, err error) AutomationResult {
	return AutomationResult{
		Success:     false,
		Message:     fmt.Sprintf("Automation failed: %v", err),
		Provider:    provider,
		PortalURL:   portalURL,
		SuccessRate: "0.0%",
		Screenshots: screenshots,
		SessionData: sessionData,
		NextSteps: []string{
			"Fill the form manually on the portal",
			"Check that a Chromium-based browser is installed and reachable",
			"Try again - the portal might have temporary issues",
		},
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
}
