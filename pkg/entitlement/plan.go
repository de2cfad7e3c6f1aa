package entitlement

import (
	"fmt"
	"strings"
)

// Tier is a purchasable plan level. Tiers are totally ordered: free < pro < team.
type Tier int

const (
	TierFree Tier = iota
	TierPro
	TierTeam
)

// Unlimited marks a numeric limit without a ceiling (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

var tierNames = [...]string{
	TierFree: "free",
	TierPro:  "pro",
	TierTeam: "team",
}

// Tiers returns all tiers in ascending order.
func Tiers() []Tier {
	return []Tier{TierFree, TierPro, TierTeam}
}

func (t Tier) String() string {
	if !t.valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// AtLeast reports whether t is the same as or above required in the tier hierarchy.
func (t Tier) AtLeast(required Tier) bool {
	return t >= required
}

func (t Tier) valid() bool {
	return t >= TierFree && t <= TierTeam
}

// MarshalText implements encoding.TextMarshaler so tiers serialize by name.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, ErrInvalidTier
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier parses an exact tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return TierFree, nil
	case "pro":
		return TierPro, nil
	case "team":
		return TierTeam, nil
	}
	return TierFree, fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// TierFromPlanType maps a persisted plan_type value onto a tier.
// Billing systems store values like "pro_monthly" or "team-annual", so after an
// exact match the most specific substring wins. Anything unrecognized is free.
func TierFromPlanType(planType string) Tier {
	if t, err := ParseTier(planType); err == nil {
		return t
	}
	normalized := strings.ToLower(planType)
	switch {
	case strings.Contains(normalized, "team"):
		return TierTeam
	case strings.Contains(normalized, "pro"):
		return TierPro
	}
	return TierFree
}

// SupportTier is the level of customer support bundled with a plan.
type SupportTier string

const (
	SupportEmail     SupportTier = "email"
	SupportPriority  SupportTier = "priority"
	SupportDedicated SupportTier = "dedicated"
)

// Capability names a gated product feature.
type Capability string

const (
	CapabilityAICoaching          Capability = "aiCoaching"
	CapabilityAdvancedStatistics  Capability = "advancedStatistics"
	CapabilityCalendarIntegration Capability = "calendarIntegration"
	CapabilityDistractionBlocking Capability = "distractionBlocking"
	CapabilityTeamCollaboration   Capability = "teamCollaboration"
	CapabilitySharedStatistics    Capability = "sharedStatistics"
	CapabilityAdminDashboard      Capability = "adminDashboard"
	CapabilitySSO                 Capability = "ssoIntegration"

	// CapabilityFocusSessions asks whether focus sessions are available at all.
	// How many remain today is a separate quota question.
	CapabilityFocusSessions Capability = "maxFocusSessions"
)

// Capabilities returns every known capability.
func Capabilities() []Capability {
	return []Capability{
		CapabilityAICoaching,
		CapabilityAdvancedStatistics,
		CapabilityCalendarIntegration,
		CapabilityDistractionBlocking,
		CapabilityTeamCollaboration,
		CapabilitySharedStatistics,
		CapabilityAdminDashboard,
		CapabilitySSO,
		CapabilityFocusSessions,
	}
}

// FeatureSet is the capability and limit bundle of a tier.
type FeatureSet struct {
	AICoaching          bool `json:"aiCoaching"`
	AdvancedStatistics  bool `json:"advancedStatistics"`
	CalendarIntegration bool `json:"calendarIntegration"`
	DistractionBlocking bool `json:"distractionBlocking"`
	TeamCollaboration   bool `json:"teamCollaboration"`
	SharedStatistics    bool `json:"sharedStatistics"`
	AdminDashboard      bool `json:"adminDashboard"`
	SSO                 bool `json:"ssoIntegration"`

	MaxFocusSessionsPerDay int64       `json:"maxFocusSessions"` // Unlimited for no cap
	Support                SupportTier `json:"support"`
}

// Has reports whether the set grants the capability.
// Unknown capabilities are never granted.
func (f FeatureSet) Has(c Capability) bool {
	switch c {
	case CapabilityAICoaching:
		return f.AICoaching
	case CapabilityAdvancedStatistics:
		return f.AdvancedStatistics
	case CapabilityCalendarIntegration:
		return f.CalendarIntegration
	case CapabilityDistractionBlocking:
		return f.DistractionBlocking
	case CapabilityTeamCollaboration:
		return f.TeamCollaboration
	case CapabilitySharedStatistics:
		return f.SharedStatistics
	case CapabilityAdminDashboard:
		return f.AdminDashboard
	case CapabilitySSO:
		return f.SSO
	case CapabilityFocusSessions:
		return f.MaxFocusSessionsPerDay > 0 || f.MaxFocusSessionsPerDay == Unlimited
	}
	return false
}

// Granted lists the capabilities the set grants, in Capabilities order.
func (f FeatureSet) Granted() []Capability {
	granted := make([]Capability, 0, len(Capabilities()))
	for _, c := range Capabilities() {
		if f.Has(c) {
			granted = append(granted, c)
		}
	}
	return granted
}

// catalog is indexed by Tier. Capability sets must not shrink as the tier grows.
var catalog = [...]FeatureSet{
	TierFree: {
		MaxFocusSessionsPerDay: 5,
		Support:                SupportEmail,
	},
	TierPro: {
		AICoaching:             true,
		AdvancedStatistics:     true,
		CalendarIntegration:    true,
		DistractionBlocking:    true,
		MaxFocusSessionsPerDay: Unlimited,
		Support:                SupportPriority,
	},
	TierTeam: {
		AICoaching:             true,
		AdvancedStatistics:     true,
		CalendarIntegration:    true,
		DistractionBlocking:    true,
		TeamCollaboration:      true,
		SharedStatistics:       true,
		AdminDashboard:         true,
		SSO:                    true,
		MaxFocusSessionsPerDay: Unlimited,
		Support:                SupportDedicated,
	},
}

// FeaturesFor returns the feature set of a tier.
// Values outside the enumeration get the free set.
func FeaturesFor(t Tier) FeatureSet {
	if !t.valid() {
		return catalog[TierFree]
	}
	return catalog[t]
}

// MinimumTierFor returns the lowest tier granting the capability.
func MinimumTierFor(c Capability) (Tier, bool) {
	for _, t := range Tiers() {
		if catalog[t].Has(c) {
			return t, true
		}
	}
	return TierFree, false
}

// Money is an amount in the smallest currency unit.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PlanDescription is the display data of a tier. It plays no part in gating.
type PlanDescription struct {
	Tier        Tier     `json:"tier"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       Money    `json:"price"`
	Features    []string `json:"features"`
}

var descriptions = [...]PlanDescription{
	TierFree: {
		Tier:        TierFree,
		Name:        "Free",
		Description: "Get started with basic productivity features",
		Price:       Money{Amount: 0, Currency: "EUR"},
		Features: []string{
			"Up to 5 focus sessions per day",
			"Basic statistics",
			"Simple timer",
			"Email support",
		},
	},
	TierPro: {
		Tier:        TierPro,
		Name:        "Pro",
		Description: "Unlock advanced features and AI coaching",
		Price:       Money{Amount: 999, Currency: "EUR"},
		Features: []string{
			"Unlimited focus sessions",
			"AI productivity coach",
			"Advanced statistics",
			"Calendar integration",
			"Distraction blocking",
			"Priority support",
		},
	},
	TierTeam: {
		Tier:        TierTeam,
		Name:        "Team",
		Description: "Everything in Pro plus team collaboration",
		Price:       Money{Amount: 1999, Currency: "EUR"},
		Features: []string{
			"Everything in Pro",
			"Team collaboration",
			"Shared statistics",
			"Admin dashboard",
			"SSO integration",
			"Dedicated support",
		},
	},
}

// Describe returns display data for a tier. The Features slice is a copy.
func Describe(t Tier) PlanDescription {
	if !t.valid() {
		t = TierFree
	}
	d := descriptions[t]
	d.Features = append([]string(nil), d.Features...)
	return d
}

// UpgradeURL is the in-app checkout path for a tier on monthly billing.
func UpgradeURL(t Tier) string {
	return "/checkout?plan=" + t.String() + "&cycle=monthly"
}
