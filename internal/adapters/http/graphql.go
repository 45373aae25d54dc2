package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/naturkollen/skyddadnatur/internal/core/domain"
	"github.com/naturkollen/skyddadnatur/internal/pkg/admincodes"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	areaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Area",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"source":       &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"status":       &graphql.Field{Type: graphql.String},
			"county":       &graphql.Field{Type: graphql.String},
			"municipality": &graphql.Field{Type: graphql.String},
			"area_ha":      &graphql.Field{Type: graphql.Float},
			"decided_year": &graphql.Field{Type: graphql.Int},
		},
	})

	geometryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Geometry",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"source":   &graphql.Field{Type: graphql.String},
			"crs":      &graphql.Field{Type: graphql.String},
			"geometry": &graphql.Field{Type: graphql.String},
		},
	})

	extentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Extent",
		Fields: graphql.Fields{
			"ids":    &graphql.Field{Type: graphql.NewList(graphql.String)},
			"source": &graphql.Field{Type: graphql.String},
			"crs":    &graphql.Field{Type: graphql.String},
			"extent": &graphql.Field{Type: graphql.String},
		},
	})

	sourceArg := &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.SourceNVR)}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"areas": &graphql.Field{
				Type:        graphql.NewList(areaType),
				Description: "List protected areas matching a filter",
				Args: graphql.FieldConfigArgument{
					"source": sourceArg,
					"name":   &graphql.ArgumentConfig{Type: graphql.String},
					"county": &graphql.ArgumentConfig{Type: graphql.String},
					"status": &graphql.ArgumentConfig{Type: graphql.String},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					filter := domain.AreaFilter{Limit: p.Args["limit"].(int)}
					if v, ok := p.Args["name"].(string); ok {
						filter.Name = v
					}
					if v, ok := p.Args["county"].(string); ok && v != "" {
						code := admincodes.CountyCode(v)
						if code == "" {
							return nil, fmt.Errorf("unknown county: %s", v)
						}
						filter.CountyCode = code
					}
					if v, ok := p.Args["status"].(string); ok {
						filter.Status = v
					}
					src := domain.Source(p.Args["source"].(string))
					return deps.Areas.List(p.Context, src, filter)
				},
			},
			"areaGeometry": &graphql.Field{
				Type:        geometryType,
				Description: "One area's boundary as WKT in WGS 84",
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"source": sourceArg,
					"status": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					src := domain.Source(p.Args["source"].(string))
					status, _ := p.Args["status"].(string)
					return deps.Areas.Geometry(p.Context, src, id, status)
				},
			},
			"areasExtent": &graphql.Field{
				Type:        extentType,
				Description: "Combined bounding box of areas as WKT in WGS 84",
				Args: graphql.FieldConfigArgument{
					"ids":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.String))},
					"source": sourceArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rawIDs := p.Args["ids"].([]interface{})
					ids := make([]string, 0, len(rawIDs))
					for _, v := range rawIDs {
						if s, ok := v.(string); ok && s != "" {
							ids = append(ids, s)
						}
					}
					src := domain.Source(p.Args["source"].(string))
					return deps.Extents.GetAreasExtent(p.Context, src, ids)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
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
