package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts client activity. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
	syncs       *prometheus.CounterVec
	purchases   *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them with reg.
// Collectors already registered by another client are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subsync",
			Name:      "identity_transitions_total",
			Help:      "Identity transitions observed by the client.",
		}, []string{"state"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subsync",
			Name:      "subscription_sync_total",
			Help:      "Subscription lookups by outcome.",
		}, []string{"outcome"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subsync",
			Name:      "purchase_attempts_total",
			Help:      "Purchase attempts by outcome.",
		}, []string{"outcome"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.transitions, err = register(reg, m.transitions); err != nil {
		return nil, err
	}
	if m.syncs, err = register(reg, m.syncs); err != nil {
		return nil, err
	}
	if m.purchases, err = register(reg, m.purchases); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) transition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

func (m *Metrics) sync(o Outcome) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(o.String()).Inc()
}

func (m *Metrics) purchase(outcome string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(outcome).Inc()
}

// Purchase outcome labels.
const (
	purchaseRedirected  = "redirected"
	purchaseFailed      = "failed"
	purchaseNotSignedIn = "not_signed_in"
	purchaseInProgress  = "in_progress"
	purchaseSubscribed  = "already_subscribed"
)
