// Package graphql serves a graphql-go schema over HTTP.
//
//	schema, _ := graphql.NewSchema(rootQuery, nil)
//	r.Post("/api/graphql", "graphql", graphql.Handler(schema))
package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/shashiranjanraj/paintpos/pkg/bind"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// NewSchema creates a schema from a root query and an optional mutation
// root.
func NewSchema(query, mutation *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// Request is the standard GraphQL-over-HTTP body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Do executes req against schema with ctx passed to every resolver.
func Do(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// Handler accepts POST bodies and GET ?query= requests. Resolver errors
// are reported in the result's errors list with status 200.
func Handler(schema graphql.Schema) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if r.Method == http.MethodGet {
			req.Query = r.URL.Query().Get("query")
			req.OperationName = r.URL.Query().Get("operationName")
		} else if _, err := bind.JSON(r, &req); err != nil {
			write(w, http.StatusBadRequest, &graphql.Result{Errors: gqlerrors.FormatErrors(err)})
			return
		}

		res := Do(r.Context(), schema, req)
		if res.HasErrors() {
			logger.WithCtx(r.Context()).Warn("graphql: query returned errors",
				"operation", req.OperationName, "errors", len(res.Errors))
		}
		write(w, http.StatusOK, res)
	})
}

func write(w http.ResponseWriter, status int, res *graphql.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
