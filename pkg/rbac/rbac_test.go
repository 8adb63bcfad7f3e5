package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/pkg/rbac"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

func TestStaffCannotDelete(t *testing.T) {
	for _, c := range []rbac.Capability{rbac.ProductsDelete, rbac.TransactionsDelete, rbac.LogsDelete} {
		assert.False(t, rbac.Can(rbac.RoleStaff, c), c)
		assert.True(t, rbac.Can(rbac.RoleAdmin, c), c)
	}
	assert.True(t, rbac.Can(rbac.RoleStaff, rbac.POSCommit))
	assert.True(t, rbac.Can(rbac.RoleStaff, rbac.ProductsWrite))
	assert.False(t, rbac.Can("Guest", rbac.CatalogRead))
	assert.Len(t, rbac.Capabilities(rbac.RoleAdmin), 9)
	assert.Len(t, rbac.Capabilities(rbac.RoleStaff), 6)
}

func TestAuthorize(t *testing.T) {
	assert.ErrorIs(t, rbac.Authorize(context.Background(), rbac.CatalogRead), rbac.ErrUnauthenticated)

	staff := session.WithSession(context.Background(), &session.Session{Role: rbac.RoleStaff})
	assert.NoError(t, rbac.Authorize(staff, rbac.CatalogRead))
	assert.ErrorIs(t, rbac.Authorize(staff, rbac.LogsDelete), rbac.ErrForbidden)
}

func TestRequireMiddleware(t *testing.T) {
	h := rbac.Require(rbac.LogsDelete)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		sess *session.Session
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"staff", &session.Session{Role: rbac.RoleStaff}, http.StatusForbidden},
		{"admin", &session.Session{Role: rbac.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/logs/1", nil)
			if tc.sess != nil {
				req = req.WithContext(session.WithSession(req.Context(), tc.sess))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
