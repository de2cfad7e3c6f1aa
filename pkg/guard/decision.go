package guard

import (
	"net/http"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonUnauthenticated       Reason = "unauthenticated"
	ReasonNoAdmin               Reason = "no-admin"
	ReasonPlanTooLow            Reason = "plan-too-low"
	ReasonFeatureUnavailable    Reason = "feature-unavailable"
	ReasonQuotaExceeded         Reason = "quota-exceeded"
	ReasonUnavailableFailClosed Reason = "unavailable-fail-closed"
)

// Prompt tells the presentation layer what to offer after a denial.
type Prompt string

const (
	PromptNone    Prompt = "none"
	PromptUpgrade Prompt = "upgrade"
	PromptSignIn  Prompt = "sign-in"
	PromptRetry   Prompt = "retry"
)

// Decision is the outcome of one Check.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Unmet is the first requirement that failed. Zero when allowed or unauthenticated.
	Unmet Requirement
	// Err carries the collaborator failure behind ReasonUnavailableFailClosed.
	Err error

	Subscription entitlement.Subscription
	Quota        *entitlement.Quota
}

func allow(sub entitlement.Subscription, q *entitlement.Quota) Decision {
	return Decision{Allowed: true, Subscription: sub, Quota: q}
}

func deny(reason Reason, unmet Requirement, sub entitlement.Subscription) Decision {
	return Decision{Reason: reason, Unmet: unmet, Subscription: sub}
}

func failClosed(err error, unmet Requirement) Decision {
	return Decision{Reason: ReasonUnavailableFailClosed, Unmet: unmet, Err: err}
}

// Prompt returns the follow-up to offer the user.
// Admin denials offer nothing so the admin surface does not advertise itself.
func (d Decision) Prompt() Prompt {
	switch d.Reason {
	case ReasonPlanTooLow, ReasonFeatureUnavailable, ReasonQuotaExceeded:
		return PromptUpgrade
	case ReasonUnauthenticated:
		return PromptSignIn
	case ReasonUnavailableFailClosed:
		return PromptRetry
	}
	return PromptNone
}

// HTTPStatus maps the decision to a response status code.
func (d Decision) HTTPStatus() int {
	switch d.Reason {
	case ReasonNone:
		return http.StatusOK
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonNoAdmin:
		return http.StatusNotFound
	case ReasonPlanTooLow, ReasonFeatureUnavailable:
		return http.StatusForbidden
	case ReasonQuotaExceeded:
		return http.StatusTooManyRequests
	}
	return http.StatusServiceUnavailable
}

// Action is a call to action shown with a denial.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Notice is the user-facing description of a denial. It never contains raw errors.
type Notice struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []Action `json:"actions"`
	// UpgradeURL points at checkout for the lowest tier that would grant access.
	UpgradeURL string `json:"upgrade_url,omitempty"`
}

const (
	pricingPath   = "/pricing"
	dashboardPath = "/dashboard"
	signInPath    = "/login"
)

// Notice describes the unmet requirement and what the user can do about it.
func (d Decision) Notice() Notice {
	back := Action{Label: "Back to dashboard", URL: dashboardPath}
	plans := Action{Label: "View plans", URL: pricingPath}

	var n Notice
	switch d.Reason {
	case ReasonNone:
		return Notice{}
	case ReasonUnauthenticated:
		n = Notice{
			Title:       "Sign in required",
			Description: "Sign in to use this feature.",
			Actions:     []Action{{Label: "Sign in", URL: signInPath}},
		}
	case ReasonNoAdmin:
		n = Notice{
			Title:       "Admin access required",
			Description: "This feature is only available to administrators.",
			Actions:     []Action{back},
		}
	case ReasonPlanTooLow:
		n = Notice{Actions: []Action{plans, back}}
		switch d.Unmet.Tier() {
		case entitlement.TierTeam:
			n.Title = "Team plan required"
			n.Description = "Upgrade to a Team plan to access team collaboration features."
		default:
			n.Title = "Pro plan required"
			n.Description = "Upgrade to a Pro plan to access advanced features."
		}
	case ReasonFeatureUnavailable:
		n = Notice{
			Title:       "Premium feature",
			Description: `The feature "` + string(d.Unmet.Capability()) + `" is not available on your current plan.`,
			Actions:     []Action{plans, back},
		}
	case ReasonQuotaExceeded:
		n = Notice{
			Title:       "Daily limit reached",
			Description: "You have used all focus sessions included in your plan today. Upgrade for unlimited sessions.",
			Actions:     []Action{plans, back},
		}
	default:
		n = Notice{
			Title:       "Temporarily unavailable",
			Description: "We could not verify your access right now. Please try again in a moment.",
			Actions:     []Action{back},
		}
	}

	if d.Prompt() == PromptUpgrade {
		if t, ok := d.Unmet.upgradeTier(); ok {
			n.UpgradeURL = entitlement.UpgradeURL(t)
		}
	}
	return n
}
