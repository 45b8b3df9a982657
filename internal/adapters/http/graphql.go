package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geogrids/internal/core/domain"
)

// uint64 hashes do not fit GraphQL's 32-bit Int, so they travel as decimal
// strings.
func hashString(p graphql.ResolveParams) (interface{}, error) {
	switch v := p.Source.(type) {
	case *domain.Cell:
		return strconv.FormatUint(v.NumericHash, 10), nil
	case domain.Cell:
		return strconv.FormatUint(v.NumericHash, 10), nil
	case *domain.WordEncoding:
		return strconv.FormatUint(v.Hash, 10), nil
	case *domain.WordDecoding:
		return strconv.FormatUint(v.Hash, 10), nil
	}
	return nil, nil
}

func parseHashArg(p graphql.ResolveParams, name string) (uint64, error) {
	raw, _ := p.Args[name].(string)
	h, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned 64-bit integer", name)
	}
	return h, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	cellType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cell",
		Fields: graphql.Fields{
			"readable_hash": &graphql.Field{Type: graphql.String},
			"numeric_hash":  &graphql.Field{Type: graphql.String, Resolve: hashString},
			"precision":     &graphql.Field{Type: graphql.Int},
			"octant":        &graphql.Field{Type: graphql.Int},
			"levels":        &graphql.Field{Type: graphql.NewList(graphql.Int)},
			"center":        &graphql.Field{Type: geoPointType},
			"corners":       &graphql.Field{Type: graphql.NewList(geoPointType)},
			"bounds":        &graphql.Field{Type: boundsType},
			"source":        &graphql.Field{Type: geoPointType},
		},
	})

	wordlistType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Wordlist",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"version":     &graphql.Field{Type: graphql.Int},
			"separator":   &graphql.Field{Type: graphql.String},
			"size":        &graphql.Field{Type: graphql.Int},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	encodingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WordEncoding",
		Fields: graphql.Fields{
			"wordlist":  &graphql.Field{Type: graphql.String},
			"version":   &graphql.Field{Type: graphql.Int},
			"hash":      &graphql.Field{Type: graphql.String, Resolve: hashString},
			"precision": &graphql.Field{Type: graphql.Int},
			"text":      &graphql.Field{Type: graphql.String},
		},
	})

	decodingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WordDecoding",
		Fields: graphql.Fields{
			"wordlist":  &graphql.Field{Type: graphql.String},
			"version":   &graphql.Field{Type: graphql.Int},
			"hash":      &graphql.Field{Type: graphql.String, Resolve: hashString},
			"precision": &graphql.Field{Type: graphql.Int},
			"truncated": &graphql.Field{Type: graphql.Boolean},
			"offending": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cell": &graphql.Field{
				Type:        cellType,
				Description: "Hash a coordinate into its grid cell",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"precision": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.defaultPrecision()},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					precision := p.Args["precision"].(int)
					return deps.Grid.Encode(p.Context, lat, lon, precision)
				},
			},
			"locate": &graphql.Field{
				Type:        cellType,
				Description: "Resolve a readable hash, or a numeric hash with its precision",
				Args: graphql.FieldConfigArgument{
					"hash":      &graphql.ArgumentConfig{Type: graphql.String},
					"numeric":   &graphql.ArgumentConfig{Type: graphql.String},
					"precision": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.defaultPrecision()},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if hash, ok := p.Args["hash"].(string); ok && hash != "" {
						return deps.Grid.LocateReadable(p.Context, hash)
					}
					if _, ok := p.Args["numeric"].(string); !ok {
						return nil, fmt.Errorf("either hash or numeric is required")
					}
					h, err := parseHashArg(p, "numeric")
					if err != nil {
						return nil, err
					}
					return deps.Grid.LocateNumeric(p.Context, h, p.Args["precision"].(int))
				},
			},
			"precisions": &graphql.Field{
				Type:        graphql.NewList(graphql.Int),
				Description: "Precisions that map onto whole subdivision levels",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Grid.Precisions(), nil
				},
			},
			"wordlists": &graphql.Field{
				Type:        graphql.NewList(wordlistType),
				Description: "Latest version of every word list",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Wordlists.List(p.Context)
				},
			},
			"encodeWords": &graphql.Field{
				Type:        encodingType,
				Description: "Spell a numeric hash with a word list",
				Args: graphql.FieldConfigArgument{
					"wordlist":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"version":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"hash":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"precision": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.defaultPrecision()},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					h, err := parseHashArg(p, "hash")
					if err != nil {
						return nil, err
					}
					return deps.Wordlists.EncodeHash(p.Context,
						p.Args["wordlist"].(string), p.Args["version"].(int), h, p.Args["precision"].(int))
				},
			},
			"decodeWords": &graphql.Field{
				Type:        decodingType,
				Description: "Read words back into a numeric hash",
				Args: graphql.FieldConfigArgument{
					"wordlist": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"version":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"text":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Wordlists.DecodeText(p.Context,
						p.Args["wordlist"].(string), p.Args["version"].(int), p.Args["text"].(string))
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
			return errBadRequest(c, "invalid request body")
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
