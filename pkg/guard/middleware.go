package guard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
)

// DeniedHandler writes the response for a denied request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, d Decision)

type decisionCtxKey struct{}

// DecisionFromContext returns the decision that admitted the request.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionCtxKey{}).(Decision)
	return d, ok
}

// Middleware admits requests whose user satisfies reqs.
// The user id is read with entitlement.GetUserIDFromContext, so an
// authentication middleware must run first.
func (g *Guard) Middleware(reqs ...Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID, _ := entitlement.GetUserIDFromContext(ctx)

			d := g.Check(ctx, userID, reqs...)
			if !d.Allowed {
				g.denied(w, r, d)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, decisionCtxKey{}, d)))
		})
	}
}

type deniedBody struct {
	Error deniedError `json:"error"`
	Meta  deniedMeta  `json:"meta"`
}

type deniedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type deniedMeta struct {
	Prompt Prompt             `json:"prompt"`
	Notice Notice             `json:"notice"`
	Quota  *entitlement.Quota `json:"quota,omitempty"`
}

// WriteDenied is the default DeniedHandler. It writes a JSON error with the
// decision's status code and notice.
func WriteDenied(w http.ResponseWriter, r *http.Request, d Decision) {
	n := d.Notice()
	body := deniedBody{
		Error: deniedError{Code: string(d.Reason), Message: n.Description},
		Meta:  deniedMeta{Prompt: d.Prompt(), Notice: n, Quota: d.Quota},
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if d.Reason == ReasonUnavailableFailClosed {
		w.Header().Set("Retry-After", "5")
	}
	w.WriteHeader(d.HTTPStatus())
	_ = json.NewEncoder(w).Encode(body)
}
