// Package jwt authenticates API requests with identity provider access tokens.
//
// Tokens are HS256 JWTs signed with a shared secret (the Supabase project JWT
// secret). The subject claim is the user id and the email claim, when present,
// is used to recognize the root administrator.
//
//	p, err := jwt.NewParser(jwt.Config{Secret: secret, Audience: "authenticated"})
//	r.Use(jwt.Middleware(p, log))
//
// After the middleware, handlers read the caller with
// entitlement.GetUserIDFromContext and entitlement.GetEmailFromContext.
// Requests without a token continue anonymously.
package jwt
