package binder

import "net/http"

// Query binds fields tagged `query:"name"` from the URL query string.
// Untagged fields are left alone.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", func(name string) []string {
			return r.URL.Query()[name]
		}, ErrFailedToParseQuery)
	}
}
