// Package binder decodes HTTP request parts into request structs.
//
// A binder has the signature func(*http.Request, any) error and is handed to
// handler.Wrap. JSON reads the body, Query and Path read `query:"name"` and
// `path:"name"` struct tags. A binder returns ErrBinderNotApplicable when the
// request has nothing for it, and the next binder is tried.
package binder
