package settings

import "time"

// Milliseconds is a duration stored in configuration files as an integer.
type Milliseconds int

func (m Milliseconds) Int() int {
	return int(m)
}

func (m Milliseconds) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Or returns m as a duration, or def when m is not positive.
func (m Milliseconds) Or(def time.Duration) time.Duration {
	if m <= 0 {
		return def
	}
	return m.Duration()
}

func FromDuration(d time.Duration) Milliseconds {
	return Milliseconds(d / time.Millisecond)
}
