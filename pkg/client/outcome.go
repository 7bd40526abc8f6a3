package client

// Outcome is how one identity transition ended for the subscription panel.
type Outcome string

const (
	// OutcomeAnonymous: no identity, nothing fetched.
	OutcomeAnonymous Outcome = "anonymous"
	// OutcomeSubscribed: the backend reported a subscription.
	OutcomeSubscribed Outcome = "subscribed"
	// OutcomeEmpty: the backend reported no subscription.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed: the lookup failed and the panel fell back to empty.
	OutcomeFailed Outcome = "failed"
	// OutcomeTokenFailed: no token could be obtained, no lookup was made.
	OutcomeTokenFailed Outcome = "token_failed"
	// OutcomeStale: a newer transition happened first; the result was dropped.
	OutcomeStale Outcome = "stale"
)

func (o Outcome) String() string { return string(o) }
