package auth

import (
	"strings"

	"posgate.io/internal/obs"
)

// Capability grant keys. The set is closed: a grant row must carry one of
// these strings to take effect.
const (
	GrantUsers       = "users"
	GrantPermissions = "permissions"
	GrantQuery       = "query"
	GrantImages      = "images"
	GrantCost        = "cost"
	GrantAdmin       = "admin"
	GrantStock       = "stock"
	GrantReports     = "reports"
	GrantStores      = "stores"
)

// GrantKeys lists every known capability in stable order.
var GrantKeys = []string{
	GrantUsers,
	GrantPermissions,
	GrantQuery,
	GrantImages,
	GrantCost,
	GrantAdmin,
	GrantStock,
	GrantReports,
	GrantStores,
}

// PermissionSet is the fixed set of boolean capabilities held by an
// identity. Absence means not granted. Admin does NOT imply the other
// flags: callers needing "admin or X" must check both explicitly.
type PermissionSet struct {
	Users       bool `json:"users"`
	Permissions bool `json:"permissions"`
	Query       bool `json:"query"`
	Images      bool `json:"images"`
	Cost        bool `json:"cost"`
	Admin       bool `json:"admin"`
	Stock       bool `json:"stock"`
	Reports     bool `json:"reports"`
	Stores      bool `json:"stores"`
}

// PermissionSetFromGrants decodes grant rows into a set. Unrecognized grant
// strings are logged and ignored so a typo in the grant table leaves a
// trace instead of silently dropping a capability.
func PermissionSetFromGrants(grants []string) PermissionSet {
	var set PermissionSet
	for _, g := range grants {
		switch strings.ToLower(strings.TrimSpace(g)) {
		case GrantUsers:
			set.Users = true
		case GrantPermissions:
			set.Permissions = true
		case GrantQuery:
			set.Query = true
		case GrantImages:
			set.Images = true
		case GrantCost:
			set.Cost = true
		case GrantAdmin:
			set.Admin = true
		case GrantStock:
			set.Stock = true
		case GrantReports:
			set.Reports = true
		case GrantStores:
			set.Stores = true
		case "":
		default:
			obs.LogRequest(map[string]any{
				"level": "warn",
				"msg":   "unknown permission grant ignored",
				"grant": g,
			})
		}
	}
	return set
}

// Grants returns the granted capability keys in stable order.
// PermissionSetFromGrants(p.Grants()) round-trips.
func (p PermissionSet) Grants() []string {
	var out []string
	for _, key := range GrantKeys {
		if p.Has(key) {
			out = append(out, key)
		}
	}
	return out
}

// Has reports whether the named capability is granted.
func (p PermissionSet) Has(key string) bool {
	switch key {
	case GrantUsers:
		return p.Users
	case GrantPermissions:
		return p.Permissions
	case GrantQuery:
		return p.Query
	case GrantImages:
		return p.Images
	case GrantCost:
		return p.Cost
	case GrantAdmin:
		return p.Admin
	case GrantStock:
		return p.Stock
	case GrantReports:
		return p.Reports
	case GrantStores:
		return p.Stores
	}
	return false
}

// StoreAccess is the resolved store-access grant for an identity: either
// every retail store or an explicit set of store codes. When AllStores is
// set the explicit codes are irrelevant.
type StoreAccess struct {
	AllStores bool     `json:"all_stores"`
	Stores    []string `json:"stores"`
}

// CanSee reports whether the grant covers the store code.
func (a StoreAccess) CanSee(code string) bool {
	if a.AllStores {
		return true
	}
	for _, c := range a.Stores {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}
