// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves callers and mints anonymous voter tokens.

# Principals

Members authenticate with an HS256 JWT carrying id, email and role claims,
sent as a bearer credential:

	Authorization: Bearer <token>

A Resolver maps the credential to a Principal:

	resolver := auth.NewJWTResolver(cfg.JWTSecret)
	p := resolver.Authenticate(auth.BearerToken(r))
	if p.IsAdmin() { ... }

An absent, malformed or expired token yields nil, which callers treat as an
anonymous visitor rather than an error. Read paths and guest check-in are
open to anonymous callers.

Issue signs tokens the resolver accepts. Login and password handling live
outside this service.

# Voter Tokens

Ballots are anonymous. A voter token is an opaque random string that groups
the rows of one ballot:

	token := auth.GenerateVoterToken()
*/
package auth
