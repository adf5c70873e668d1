package webclient

import "time"

// Config tunes the net/http backend. It mirrors config.Client without
// importing it.
type Config struct {
	// Timeout for the whole exchange. 0 disables it.
	Timeout time.Duration

	// RateLimit in requests per second; 0 means unlimited.
	RateLimit float64
	Burst     int
}
