// Package rbac is the single capability check of the application. Services
// call Authorize before every mutation; routes add Require as middleware.
package rbac

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/paintpos/pkg/response"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

// Capability is one permission.
type Capability string

const (
	POSCommit          Capability = "pos.commit"
	CatalogRead        Capability = "catalog.read"
	ProductsWrite      Capability = "products.write"
	ProductsDelete     Capability = "products.delete"
	TransactionsRead   Capability = "transactions.read"
	TransactionsDelete Capability = "transactions.delete"
	LogsRead           Capability = "logs.read"
	LogsDelete         Capability = "logs.delete"
	ReportsRead        Capability = "reports.read"
)

const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

var (
	ErrUnauthenticated = errors.New("rbac: not authenticated")
	ErrForbidden       = errors.New("rbac: forbidden")
)

var staff = []Capability{POSCommit, CatalogRead, ProductsWrite, TransactionsRead, LogsRead, ReportsRead}

var grants = map[string]map[Capability]bool{
	RoleAdmin: set(append(staff, ProductsDelete, TransactionsDelete, LogsDelete)...),
	RoleStaff: set(staff...),
}

func set(caps ...Capability) map[Capability]bool {
	out := make(map[Capability]bool, len(caps))
	for _, c := range caps {
		out[c] = true
	}
	return out
}

// Can reports whether role holds capability.
func Can(role string, c Capability) bool { return grants[role][c] }

// Capabilities lists what role holds, in a stable order.
func Capabilities(role string) []Capability {
	all := []Capability{POSCommit, CatalogRead, ProductsWrite, ProductsDelete,
		TransactionsRead, TransactionsDelete, LogsRead, LogsDelete, ReportsRead}
	var out []Capability
	for _, c := range all {
		if Can(role, c) {
			out = append(out, c)
		}
	}
	return out
}

// Authorize checks the session carried by ctx.
func Authorize(ctx context.Context, c Capability) error {
	sess, ok := session.FromCtx(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !Can(sess.Role, c) {
		return ErrForbidden
	}
	return nil
}

// Require returns middleware that lets the request through only when the
// session holds c. It must run after middleware.Authenticate.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := Authorize(r.Context(), c); {
			case errors.Is(err, ErrUnauthenticated):
				response.Unauthorized(w)
			case err != nil:
				response.Forbidden(w)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
