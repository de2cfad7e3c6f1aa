// Package handler provides typed JSON HTTP handlers.
//
// A HandlerFunc receives a bound request struct and returns a Response:
//
//	type promoteRequest struct {
//		Email string `json:"email"`
//	}
//
//	func promote(ctx handler.Context, req promoteRequest) handler.Response {
//		if err := svc.Promote(ctx, req.Email); err != nil {
//			return handler.Error(err)
//		}
//		return handler.Empty()
//	}
//
//	r.Post("/admins", handler.Wrap(promote,
//		handler.WithBinder(binder.JSON()),
//		handler.WithErrorHandler(errs),
//	))
//
// Binding failures, Error responses and render failures all reach the
// ErrorHandler. NewErrorHandler maps domain errors to statuses with an ordered
// table of ErrorMapping and answers with the JSONResponse envelope.
package handler
