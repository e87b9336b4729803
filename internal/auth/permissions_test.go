package auth

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"posgate.io/internal/obs"
)

func TestPermissionSetFromGrants(t *testing.T) {
	set := PermissionSetFromGrants([]string{"users", "QUERY", " cost ", "admin"})
	if !set.Users || !set.Query || !set.Cost || !set.Admin {
		t.Fatalf("grants not decoded: %+v", set)
	}
	if set.Permissions || set.Images || set.Stock || set.Reports || set.Stores {
		t.Fatalf("ungranted flags set: %+v", set)
	}
}

func TestPermissionSetDefaultDeny(t *testing.T) {
	var set PermissionSet
	for _, key := range GrantKeys {
		if set.Has(key) {
			t.Fatalf("zero set grants %s", key)
		}
	}
}

func TestUnknownGrantLoggedAndIgnored(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	set := PermissionSetFromGrants([]string{"users", "usrs"})
	if !set.Users {
		t.Fatalf("valid grant lost: %+v", set)
	}
	if set != (PermissionSet{Users: true}) {
		t.Fatalf("typo grant took effect: %+v", set)
	}
	if !strings.Contains(buf.String(), "usrs") {
		t.Fatalf("unknown grant not logged: %s", buf.String())
	}
}

func TestGrantsRoundTrip(t *testing.T) {
	sets := []PermissionSet{
		{},
		{Admin: true},
		{Users: true, Query: true, Cost: true},
		{Users: true, Permissions: true, Query: true, Images: true, Cost: true, Admin: true, Stock: true, Reports: true, Stores: true},
	}
	for _, set := range sets {
		if got := PermissionSetFromGrants(set.Grants()); got != set {
			t.Fatalf("round-trip mismatch: %+v != %+v", got, set)
		}
	}
}

func TestGrantsStableOrder(t *testing.T) {
	set := PermissionSet{Stores: true, Users: true, Cost: true}
	want := []string{"users", "cost", "stores"}
	if got := set.Grants(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected grant order: %v", got)
	}
}

func TestStoreAccessCanSee(t *testing.T) {
	explicit := StoreAccess{Stores: []string{"C01", "C03"}}
	if !explicit.CanSee("C01") || !explicit.CanSee("c03") {
		t.Fatal("explicit grant not honored")
	}
	if explicit.CanSee("C02") {
		t.Fatal("ungranted store visible")
	}

	all := StoreAccess{AllStores: true}
	if !all.CanSee("C05") {
		t.Fatal("all-stores grant not honored")
	}
}
