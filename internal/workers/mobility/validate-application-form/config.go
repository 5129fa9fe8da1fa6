package validateapplicationform

import "time"

type Config struct {
	EmailDomain string
	Timeout     time.Duration
}
