/**
 * @description
 * GraphQL schema for the query-language surface.
 * Mirrors the REST surface over the same shared market service: markets,
 * market(id) and featuredMarkets queries, placeBet and createMarket
 * mutations.
 *
 * @dependencies
 * - github.com/graphql-go/graphql
 * - backend/internal/services
 * - backend/internal/ledger
 */

package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/dira-markets/backend/internal/ledger"
	"github.com/dira-markets/backend/internal/services"
)

const endDateLayout = "2006-01-02"

// NewSchema builds the executable schema bound to the given service.
func NewSchema(svc *services.MarketService) (graphql.Schema, error) {
	outcomeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Outcome",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"probability": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"volume":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	marketType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Market",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"totalVolume": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"totalTrades": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"endDate": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, ok := p.Source.(ledger.Market)
					if !ok {
						return nil, fmt.Errorf("unexpected source type %T", p.Source)
					}
					if m.EndDate.IsZero() {
						return "", nil
					}
					return m.EndDate.Format(endDateLayout), nil
				},
			},
			"isFeatured": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"tags":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			"outcomes":   &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(outcomeType)))},
		},
	})

	betType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bet",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"marketId":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"outcome":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"amount":          &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"userId":          &graphql.Field{Type: graphql.String},
			"potentialPayout": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"timestamp": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b, ok := p.Source.(ledger.Bet)
					if !ok {
						return nil, fmt.Errorf("unexpected source type %T", p.Source)
					}
					return b.Timestamp.Format(time.RFC3339), nil
				},
			},
		},
	})

	createMarketInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateMarketInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"category":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"endDate":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"outcomes":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
			"tags":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markets": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(marketType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListMarkets(p.Context)
				},
			},
			"market": &graphql.Field{
				Type: marketType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					market, err := svc.GetMarket(p.Context, id)
					if errors.Is(err, ledger.ErrMarketNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return market, nil
				},
			},
			"featuredMarkets": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(marketType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.FeaturedMarkets(p.Context)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"placeBet": &graphql.Field{
				Type: graphql.NewNonNull(betType),
				Args: graphql.FieldConfigArgument{
					"marketId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"outcome":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"amount":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"userId":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "anonymous"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					marketID, _ := p.Args["marketId"].(string)
					outcome, _ := p.Args["outcome"].(string)
					amount, _ := p.Args["amount"].(float64)
					userID, _ := p.Args["userId"].(string)

					bet, _, err := svc.PlaceBet(p.Context, marketID, outcome, amount, userID)
					if err != nil {
						return nil, err
					}
					return bet, nil
				},
			},
			"createMarket": &graphql.Field{
				Type: graphql.NewNonNull(marketType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createMarketInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input, _ := p.Args["input"].(map[string]interface{})
					market, err := marketFromInput(input)
					if err != nil {
						return nil, err
					}
					return svc.CreateMarket(p.Context, market)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// marketFromInput maps a CreateMarketInput value onto a fresh, zero-volume
// market. Outcomes start with a uniform prior; their probabilities become
// volume-derived as soon as the first stakes arrive.
func marketFromInput(input map[string]interface{}) (ledger.Market, error) {
	market := ledger.Market{
		ID: uuid.NewString(),
	}

	market.Title, _ = input["title"].(string)
	market.Description, _ = input["description"].(string)
	market.Category, _ = input["category"].(string)

	if raw, ok := input["endDate"].(string); ok && raw != "" {
		endDate, err := time.Parse(endDateLayout, raw)
		if err != nil {
			endDate, err = time.Parse(time.RFC3339, raw)
		}
		if err != nil {
			return ledger.Market{}, fmt.Errorf("invalid endDate %q", raw)
		}
		market.EndDate = endDate
	}

	if rawTags, ok := input["tags"].([]interface{}); ok {
		for _, t := range rawTags {
			if tag, ok := t.(string); ok {
				market.Tags = append(market.Tags, tag)
			}
		}
	}

	rawOutcomes, _ := input["outcomes"].([]interface{})
	if len(rawOutcomes) < 2 {
		return ledger.Market{}, fmt.Errorf("a market needs at least 2 outcomes")
	}
	prior := 1.0 / float64(len(rawOutcomes))
	for _, o := range rawOutcomes {
		name, ok := o.(string)
		if !ok || name == "" {
			return ledger.Market{}, fmt.Errorf("outcome names must be non-empty strings")
		}
		market.Outcomes = append(market.Outcomes, ledger.Outcome{
			Name:        name,
			Probability: prior,
		})
	}

	return market, nil
}
