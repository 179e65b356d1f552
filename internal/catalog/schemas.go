package catalog

import "github.com/adminkit/adminkit/internal/schema"

func valueRule() schema.Rule {
	return schema.Rule{
		Kind: schema.Object,
		Schema: &schema.Schema{
			Required: []string{"value", "title"},
			Fields: map[string]schema.Rule{
				"value": {Kind: schema.Any},
				"title": {Kind: schema.String, MinLength: 1},
			},
		},
	}
}

func idOnlySchema() *schema.Schema {
	return &schema.Schema{
		Required: []string{"id"},
		Fields: map[string]schema.Rule{
			"id": {Kind: schema.String, UUID: true},
		},
	}
}

// Schemas returns the per-operation payload schemas shared by every
// catalog kind under the given unknown-field policy.
func Schemas(policy schema.Policy) *schema.Set {
	return schema.NewSet(policy, map[string]*schema.Schema{
		"create": {
			Required: []string{"category", "value"},
			Fields: map[string]schema.Rule{
				"category":    {Kind: schema.String, MinLength: 1},
				"value":       valueRule(),
				"description": {Kind: schema.String},
			},
		},
		"update": {
			Required: []string{"id"},
			Fields: map[string]schema.Rule{
				"id":          {Kind: schema.String, UUID: true},
				"category":    {Kind: schema.String, MinLength: 1},
				"value":       valueRule(),
				"description": {Kind: schema.String},
			},
		},
		"delete": idOnlySchema(),
		"get":    idOnlySchema(),
		"getall": {
			Fields: map[string]schema.Rule{
				"category": {Kind: schema.String, MinLength: 1},
			},
		},
		"getbylist": {
			MinFields: 1,
			Pattern:   &schema.Rule{Kind: schema.String, UUID: true},
		},
	})
}
