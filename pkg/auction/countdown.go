package auction

import (
	"encoding/json"
	"time"
)

// Countdown is the decomposed time left until an auction ends. Days carries
// the whole days; hours, minutes and seconds are the sub-day remainder.
type Countdown struct {
	Expired      bool
	Days         int
	Hours        int
	Minutes      int
	Seconds      int
	TotalSeconds float64
}

// Remaining decomposes end - now. Once end has passed only the expired
// marker is set.
func Remaining(end, now time.Time) Countdown {
	if !end.After(now) {
		return Countdown{Expired: true}
	}

	delta := end.Sub(now)
	days := int(delta / (24 * time.Hour))
	rem := delta % (24 * time.Hour)

	return Countdown{
		Days:         days,
		Hours:        int(rem / time.Hour),
		Minutes:      int(rem % time.Hour / time.Minute),
		Seconds:      int(rem % time.Minute / time.Second),
		TotalSeconds: delta.Seconds(),
	}
}

// MarshalJSON keeps the wire shape of the countdown: an expired auction is
// exactly {"expired":true} with no component breakdown.
func (c Countdown) MarshalJSON() ([]byte, error) {
	if c.Expired {
		return []byte(`{"expired":true}`), nil
	}
	return json.Marshal(struct {
		Expired      bool    `json:"expired"`
		Days         int     `json:"days"`
		Hours        int     `json:"hours"`
		Minutes      int     `json:"minutes"`
		Seconds      int     `json:"seconds"`
		TotalSeconds float64 `json:"total_seconds"`
	}{
		Expired:      false,
		Days:         c.Days,
		Hours:        c.Hours,
		Minutes:      c.Minutes,
		Seconds:      c.Seconds,
		TotalSeconds: c.TotalSeconds,
	})
}
