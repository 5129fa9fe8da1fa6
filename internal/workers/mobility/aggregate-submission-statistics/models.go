package aggregatesubmissionstatistics

import "mobility-portal/internal/mobility/statistics"

// Input is empty; the statistics always cover every stored submission.
type Input struct{}

type Output struct {
	Statistics statistics.Statistics `json:"statistics"`
	ComputedAt string                `json:"computedAt"`
}
