package analysis

import "context"

// Backend is the fraud-analysis service the console talks to.
type Backend interface {
	// Customers lists the selectable customer names.
	Customers(ctx context.Context) ([]string, error)
	// Run triggers an analysis and returns the decoded response body.
	Run(ctx context.Context, req RunRequest) (any, error)
}
