package account

import "github.com/adminkit/adminkit/internal/schema"

func idOnlySchema() *schema.Schema {
	return &schema.Schema{
		Required: []string{"id"},
		Fields: map[string]schema.Rule{
			"id": {Kind: schema.String, UUID: true},
		},
	}
}

// Schemas returns the per-operation payload schemas for the account
// manager under the given unknown-field policy.
func Schemas(policy schema.Policy) *schema.Set {
	return schema.NewSet(policy, map[string]*schema.Schema{
		"create": {
			Required: []string{"fullname", "role", "username", "password"},
			Fields: map[string]schema.Rule{
				"fullname": {Kind: schema.String, MinLength: 1},
				"role":     {Kind: schema.String, Enum: Roles},
				"username": {Kind: schema.String, MinLength: 1},
				"password": {Kind: schema.String, MinLength: 6},
				"status":   {Kind: schema.String, Enum: Statuses},
			},
		},
		"update": {
			Required: []string{"id"},
			Fields: map[string]schema.Rule{
				"id":       {Kind: schema.String, UUID: true},
				"fullname": {Kind: schema.String, MinLength: 1},
				"role":     {Kind: schema.String, Enum: Roles},
				"username": {Kind: schema.String, MinLength: 1},
				"password": {Kind: schema.String, MinLength: 6},
				"status":   {Kind: schema.String, Enum: Statuses},
			},
		},
		"delete":     idOnlySchema(),
		"harddelete": idOnlySchema(),
		"find":       idOnlySchema(),
		"findall":    {},
		"login": {
			Required: []string{"username", "password"},
			Fields: map[string]schema.Rule{
				"username": {Kind: schema.String, MinLength: 1},
				"password": {Kind: schema.String, MinLength: 6},
			},
		},
		"getdeletedaccount":     idOnlySchema(),
		"getalldeletedaccount":  {},
		"recoverdeletedaccount": idOnlySchema(),
	})
}
