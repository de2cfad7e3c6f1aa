package guard

import (
	"fmt"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
)

// kind orders requirement evaluation: admin, plan, feature, quota.
type kind int

const (
	kindAdmin kind = iota + 1
	kindPlan
	kindFeature
	kindQuota
)

// Requirement is a single access condition. Requirements passed together are ANDed.
type Requirement struct {
	kind       kind
	tier       entitlement.Tier
	capability entitlement.Capability
}

// RequireAdmin admits administrators only.
func RequireAdmin() Requirement {
	return Requirement{kind: kindAdmin}
}

// RequirePlan admits users whose effective tier is at least tier.
func RequirePlan(tier entitlement.Tier) Requirement {
	return Requirement{kind: kindPlan, tier: tier}
}

// RequireFeature admits users whose plan grants the capability.
func RequireFeature(c entitlement.Capability) Requirement {
	return Requirement{kind: kindFeature, capability: c}
}

// RequireSessionQuota admits users with at least one focus session left today.
func RequireSessionQuota() Requirement {
	return Requirement{kind: kindQuota}
}

// Tier returns the tier a plan requirement asks for.
func (r Requirement) Tier() entitlement.Tier { return r.tier }

// Capability returns the capability a feature requirement asks for.
func (r Requirement) Capability() entitlement.Capability { return r.capability }

// IsZero reports whether r is the zero Requirement.
func (r Requirement) IsZero() bool { return r.kind == 0 }

func (r Requirement) String() string {
	switch r.kind {
	case kindAdmin:
		return "admin"
	case kindPlan:
		return "plan:" + r.tier.String()
	case kindFeature:
		return "feature:" + string(r.capability)
	case kindQuota:
		return "quota:" + string(entitlement.UnitFocusSession)
	}
	return fmt.Sprintf("requirement(%d)", int(r.kind))
}

// upgradeTier is the lowest tier that would satisfy r.
func (r Requirement) upgradeTier() (entitlement.Tier, bool) {
	switch r.kind {
	case kindPlan:
		return r.tier, true
	case kindFeature:
		return entitlement.MinimumTierFor(r.capability)
	case kindQuota:
		return entitlement.TierPro, true
	}
	return entitlement.TierFree, false
}
