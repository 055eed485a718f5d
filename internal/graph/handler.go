/**
 * @description
 * Fiber transport for the GraphQL surface.
 * Accepts the standard {query, variables, operationName} request envelope on
 * POST /graphql and executes it against the schema.
 *
 * @dependencies
 * - github.com/graphql-go/graphql
 * - github.com/gofiber/fiber/v2
 */

package graph

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/dira-markets/backend/internal/services"
)

// Handler executes GraphQL requests against the shared market service.
type Handler struct {
	schema graphql.Schema
}

func NewHandler(svc *services.MarketService) (*Handler, error) {
	schema, err := NewSchema(svc)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema}, nil
}

// request is the standard GraphQL request envelope.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Post handles POST /graphql
func (h *Handler) Post(c *fiber.Ctx) error {
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"message": "Invalid request body: " + err.Error()}},
		})
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Context(),
	})

	return c.JSON(result)
}
