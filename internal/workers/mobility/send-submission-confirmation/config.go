package sendsubmissionconfirmation

import "time"

type Config struct {
	EmailEnabled bool
	StaffEnabled bool
	Timeout      time.Duration
}
