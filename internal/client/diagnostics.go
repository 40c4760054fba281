package client

import (
	"context"
	"fmt"
)

// DiagnosticsReport summarizes the client's credential and connectivity
// state. Diagnostic tooling only, not part of the ledger contract.
type DiagnosticsReport struct {
	CredentialSource string `json:"credential_source"`
	TokenPresent     bool   `json:"token_present"`
	APIReachable     bool   `json:"api_reachable"`
	ProbeError       string `json:"probe_error,omitempty"`
}

// Diagnose reports which credential store answered and probes the API with
// a cheap read.
func (c *Client) Diagnose(ctx context.Context) *DiagnosticsReport {
	report := &DiagnosticsReport{CredentialSource: "none"}

	if chain, ok := c.creds.(*ChainProvider); ok {
		if _, source, err := chain.resolve(); err == nil {
			report.CredentialSource = source
			report.TokenPresent = true
		}
	} else if _, err := c.creds.Token(); err == nil {
		report.CredentialSource = c.creds.Name()
		report.TokenPresent = true
	}

	if _, err := c.send(ctx, "GET", "/debts/overview", nil); err != nil {
		report.ProbeError = err.Error()
		// An auth failure still proves the route is reachable.
		if _, ok := err.(*AuthenticationError); ok {
			report.APIReachable = true
		}
	} else {
		report.APIReachable = true
	}
	return report
}

// String renders the report for terminal output.
func (r *DiagnosticsReport) String() string {
	status := "unreachable"
	if r.APIReachable {
		status = "reachable"
	}
	s := fmt.Sprintf("credential: %s (present: %t), api: %s", r.CredentialSource, r.TokenPresent, status)
	if r.ProbeError != "" {
		s += ", probe error: " + r.ProbeError
	}
	return s
}
