package graphql

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/spec-kit/issue-tracker/internal/auth"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// Request is the standard GraphQL-over-HTTP body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes queries against schema. GraphQL errors are reported in
// the result body with a 200 status.
func Handler(schema graphql.Schema) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req Request
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if req.Query == "" {
			return apperrors.NewValidationError("query is required", map[string]any{
				"query": []string{"Query is required"},
			})
		}
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}

func requireCaller(p graphql.ResolveParams) error {
	if _, ok := auth.FromContext(p.Context); !ok {
		return &fieldError{code: apperrors.CodeUnauthorized, message: "authentication required"}
	}
	return nil
}
