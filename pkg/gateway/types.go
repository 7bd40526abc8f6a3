package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Subscription is the backend's billing state for the current identity.
type Subscription struct {
	Plan   string
	Status string
	// CurrentPeriodEnd is seconds since the Unix epoch.
	CurrentPeriodEnd int64
}

// PeriodEnd converts CurrentPeriodEnd to a UTC instant.
func (s Subscription) PeriodEnd() time.Time {
	return time.Unix(s.CurrentPeriodEnd, 0).UTC()
}

type subscriptionJSON struct {
	Plan             string      `json:"plan"`
	Status           string      `json:"status"`
	CurrentPeriodEnd json.Number `json:"current_period_end"`
}

func (s *Subscription) UnmarshalJSON(data []byte) error {
	var raw subscriptionJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	var end int64
	if raw.CurrentPeriodEnd != "" {
		if n, err := raw.CurrentPeriodEnd.Int64(); err == nil {
			end = n
		} else if f, ferr := raw.CurrentPeriodEnd.Float64(); ferr == nil {
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return fmt.Errorf("current_period_end: %s is not a whole number of seconds", raw.CurrentPeriodEnd)
			}
			end = int64(f)
		} else {
			return fmt.Errorf("current_period_end: %w", err)
		}
	}

	*s = Subscription{Plan: raw.Plan, Status: raw.Status, CurrentPeriodEnd: end}
	return nil
}

// CheckoutSession is the handoff to the external payment page.
type CheckoutSession struct {
	URL string `json:"url"`
}

type idTokenRequest struct {
	IDToken string `json:"id_token"`
}
