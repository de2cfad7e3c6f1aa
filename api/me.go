package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/focusflow/handler"
	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/validator"
)

// maxTrialDays bounds a caller requested trial.
const maxTrialDays = 365

func (s *server) listPlans(_ handler.Context, _ struct{}) handler.Response {
	type plan struct {
		entitlement.PlanDescription
		Limits     entitlement.FeatureSet `json:"limits"`
		UpgradeURL string                 `json:"upgrade_url,omitempty"`
	}

	tiers := entitlement.Tiers()
	plans := make([]plan, 0, len(tiers))
	for _, t := range tiers {
		p := plan{PlanDescription: entitlement.Describe(t), Limits: entitlement.FeaturesFor(t)}
		if t != entitlement.TierFree {
			p.UpgradeURL = entitlement.UpgradeURL(t)
		}
		plans = append(plans, p)
	}
	return handler.JSON(plans)
}

// subscriptionView is the caller's resolved plan.
type subscriptionView struct {
	Subscription       entitlement.Subscription `json:"subscription"`
	EffectiveTier      entitlement.Tier         `json:"effective_tier"`
	Features           entitlement.FeatureSet   `json:"features"`
	TrialDaysRemaining int                      `json:"trial_days_remaining"`
	TrialExpired       bool                     `json:"trial_expired"`
	Quota              *entitlement.Quota       `json:"quota,omitempty"`
}

func (s *server) view(ctx context.Context, sub entitlement.Subscription) subscriptionView {
	v := subscriptionView{
		Subscription:       sub,
		EffectiveTier:      sub.EffectiveTier(),
		Features:           sub.Features(),
		TrialDaysRemaining: sub.TrialDaysRemainingAt(sub.ResolvedAt),
		TrialExpired:       sub.IsTrialExpired(),
	}
	if q, err := s.Entitlements.RemainingQuota(ctx, sub.UserID, s.Now()); err == nil {
		v.Quota = &q
	}
	return v
}

func (s *server) register(ctx handler.Context, _ struct{}) handler.Response {
	userID, email, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := s.Entitlements.Register(ctx, userID, email)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(s.view(ctx, sub), handler.WithJSONStatus(http.StatusCreated))
}

func (s *server) mySubscription(ctx handler.Context, _ struct{}) handler.Response {
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	sub, err := s.Entitlements.ResolveSubscription(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(s.view(ctx, sub))
}

// trialRequest is optional; a missing body or days starts the default trial.
type trialRequest struct {
	Days *int `json:"days"`
}

func (s *server) startTrial(ctx handler.Context, req trialRequest) handler.Response {
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}

	var sub entitlement.Subscription
	if req.Days == nil {
		sub, err = s.Entitlements.StartDefaultTrial(ctx, userID)
	} else {
		if err := validator.Apply(validator.Between("days", *req.Days, 1, maxTrialDays)); err != nil {
			return handler.Error(err)
		}
		sub, err = s.Entitlements.StartTrial(ctx, userID, *req.Days)
	}
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(s.view(ctx, sub))
}

type upgradeRequest struct {
	Tier string `json:"tier"`
}

// paidTierNames lists the tiers that can be purchased.
func paidTierNames() []string {
	var names []string
	for _, t := range entitlement.Tiers() {
		if t.AtLeast(entitlement.TierPro) {
			names = append(names, t.String())
		}
	}
	return names
}

func (s *server) upgrade(ctx handler.Context, req upgradeRequest) handler.Response {
	userID, email, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}

	name := strings.ToLower(strings.TrimSpace(req.Tier))
	if err := validator.Apply(
		validator.RequiredString("tier", name),
		validator.OneOfString("tier", name, paidTierNames()),
	); err != nil {
		return handler.Error(err)
	}
	tier, err := entitlement.ParseTier(name)
	if err != nil {
		return handler.Error(err)
	}

	link, err := s.Billing.Checkout(ctx, userID, email, tier)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(link)
}
