package view

// Region is a named part of the page.
type Region int

const (
	RegionSignedOut Region = iota
	RegionSignedIn
	RegionLoading
	RegionSubscriptionList
	RegionSubscription
	RegionNoSubscription
	RegionSubscribeButton
	RegionSubscribeSpinner
	RegionSignInButton
	RegionSignInSpinner

	regionCount
)

var regionIDs = [regionCount]string{
	RegionSignedOut:        "logged-out",
	RegionSignedIn:         "logged-in",
	RegionLoading:          "subscription-loading",
	RegionSubscriptionList: "subscription-list",
	RegionSubscription:     "subscription-card",
	RegionNoSubscription:   "no-subscriptions",
	RegionSubscribeButton:  "subscribe-btn",
	RegionSubscribeSpinner: "subscribe-loading",
	RegionSignInButton:     "google-login-btn",
	RegionSignInSpinner:    "google-loading",
}

// ID is the region's element id in the page.
func (r Region) ID() string {
	if r < 0 || r >= regionCount {
		return "unknown"
	}
	return regionIDs[r]
}

func (r Region) String() string { return r.ID() }

// Regions lists every region in declaration order.
func Regions() []Region {
	rs := make([]Region, regionCount)
	for i := range rs {
		rs[i] = Region(i)
	}
	return rs
}
