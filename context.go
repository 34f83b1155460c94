package jwtsecurity

import (
	"context"
	"net/http"

	"github.com/catuns/go-jwt-security/core"
	"github.com/catuns/go-jwt-security/token"
)

// Authenticate publishes p as the authenticated principal of r. Handlers that
// establish identity themselves, such as a login endpoint, call it so that the
// generator stage issues a token for p once the handler returns.
func Authenticate(r *http.Request, p token.Principal) error {
	return core.SetPrincipal(r.Context(), p)
}

// PrincipalFrom returns the authenticated principal carried by ctx.
//
// Example:
//
//	p, ok := jwtsecurity.PrincipalFrom(r.Context())
//	if !ok {
//	    http.Error(w, "anonymous", http.StatusForbidden)
//	    return
//	}
//	fmt.Println(p.Name, p.Authorities)
func PrincipalFrom(ctx context.Context) (token.Principal, bool) {
	p, err := core.GetPrincipal(ctx)
	return p, err == nil
}
