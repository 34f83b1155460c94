// Package auth resolves principals for login flows.
//
// A UserStore looks users up by identifier. MemoryStore suits tests and
// small deployments; RedisStore keeps one hash per user in Redis. The
// Authenticator checks passwords with a PasswordHasher and returns a
// token.Principal ready to be published with jwtsecurity.Authenticate.
//
// Failures are core.AuthenticationErrors, so the exception stage answers
// them with 401 problem responses like any token error:
//
//	p, err := authenticator.Authenticate(ctx, username, password)
//	if err != nil {
//	    return err // BadCredentials or UserDisabled
//	}
//	return jwtsecurity.Authenticate(r, p)
package auth
