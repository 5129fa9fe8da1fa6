package aggregatesubmissionstatistics

import "time"

type Config struct {
	Timeout time.Duration
}
