package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"posgate.io/internal/auth"
	"posgate.io/internal/catalog"
	"posgate.io/internal/directory"
)

// fakeStore records calls so tests can assert on what reached the store.
type fakeStore struct {
	users      map[string]User
	grants     map[string][]string
	access     map[string]auth.StoreAccess
	products   []catalog.Product
	searched   bool
	deleted    []string
	replaced   map[string][]string
	logEntries []LogEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]User{},
		grants:   map[string][]string{},
		access:   map[string]auth.StoreAccess{},
		replaced: map[string][]string{},
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, u *User) error {
	if _, ok := f.users[u.Username]; ok {
		return ErrExists
	}
	f.users[u.Username] = *u
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, username string) (User, error) {
	u, ok := f.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, username string, upd UserUpdate) (User, error) {
	u, ok := f.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Password != nil {
		u.PasswordHash = *upd.Password
	}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, username string) error {
	if _, ok := f.users[username]; !ok {
		return ErrNotFound
	}
	delete(f.users, username)
	f.deleted = append(f.deleted, username)
	return nil
}

func (f *fakeStore) UserExists(ctx context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeStore) Grants(ctx context.Context, username string) ([]string, error) {
	return f.grants[username], nil
}

func (f *fakeStore) ReplaceGrants(ctx context.Context, username string, grants []string) error {
	if _, ok := f.users[username]; !ok {
		return ErrNotFound
	}
	f.replaced[username] = grants
	f.grants[username] = grants
	return nil
}

func (f *fakeStore) StoreAccess(ctx context.Context, username string) (auth.StoreAccess, error) {
	if _, ok := f.users[username]; !ok {
		return auth.StoreAccess{}, ErrNotFound
	}
	return f.access[username], nil
}

func (f *fakeStore) ReplaceStoreAccess(ctx context.Context, username string, access auth.StoreAccess) error {
	if _, ok := f.users[username]; !ok {
		return ErrNotFound
	}
	f.access[username] = access
	return nil
}

func (f *fakeStore) SearchProducts(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	f.searched = true
	return f.products, nil
}

func (f *fakeStore) InsertLog(ctx context.Context, e *LogEntry) error {
	f.logEntries = append(f.logEntries, *e)
	return nil
}

func (f *fakeStore) ListLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	return f.logEntries, nil
}

func (f *fakeStore) ListLogsByUser(ctx context.Context, username string, limit int) ([]LogEntry, error) {
	return f.logEntries, nil
}

func (f *fakeStore) DeleteLog(ctx context.Context, id int64) (int64, error) { return 0, nil }

func (f *fakeStore) DeleteLogsByUser(ctx context.Context, username string, limit int) (int64, error) {
	return 0, nil
}

func (f *fakeStore) LatestVersion(ctx context.Context, platform string) (Version, error) {
	return Version{}, ErrNotFound
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	tokens, err := auth.NewTokenService("unit-test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return New(store, tokens)
}

func ctxWith(perms auth.PermissionSet, username string) context.Context {
	principal := auth.Principal{Permissions: perms}
	principal.Claims.Subject = username
	return auth.ContextWithPrincipal(context.Background(), principal)
}

func seedUser(t *testing.T, store *fakeStore, username, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store.users[username] = User{
		Username:      username,
		LoginDuration: "8",
		PasswordHash:  hash,
	}
}

func TestLoginUniformFailure(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "jdoe", "right-pw")
	svc := newTestService(t, store)

	for _, tc := range []struct{ username, password string }{
		{"jdoe", "wrong-pw"},
		{"ghost", "anything"},
		{"", "anything"},
		{"jdoe", ""},
	} {
		_, _, err := svc.Login(context.Background(), tc.username, tc.password)
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("Login(%q, %q) err = %v, want ErrInvalidCredentials", tc.username, tc.password, err)
		}
	}
}

func TestLoginIsCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "jdoe", "pw")
	svc := newTestService(t, store)

	token, expiresAt, err := svc.Login(context.Background(), "  JDoe ", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatal("empty token or expiry")
	}
	claims, ok := svc.Tokens().Decode(token)
	if !ok || claims.Subject != "jdoe" {
		t.Fatalf("subject = %q, want jdoe", claims.Subject)
	}
}

func TestAdminDoesNotImplyOtherCapabilities(t *testing.T) {
	store := newFakeStore()
	store.products = []catalog.Product{{ID: "1"}}
	svc := newTestService(t, store)

	// Admin alone covers user management but not product search.
	adminOnly := ctxWith(auth.PermissionSet{Admin: true}, "boss")
	if _, err := svc.SearchProducts(adminOnly, catalog.Filter{Ref: "X"}); err != nil {
		t.Fatalf("admin search: %v", err)
	}

	// The query capability alone covers search but not user listing.
	queryOnly := ctxWith(auth.PermissionSet{Query: true}, "clerk")
	if _, err := svc.ListUsers(queryOnly); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("query-only ListUsers err = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.SearchProducts(queryOnly, catalog.Filter{Ref: "X"}); err != nil {
		t.Fatalf("query-only search: %v", err)
	}
}

func TestSelfServiceException(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "clerk", "pw")
	seedUser(t, store, "other", "pw")
	svc := newTestService(t, store)

	noGrants := ctxWith(auth.PermissionSet{}, "clerk")
	if _, err := svc.GetUser(noGrants, "Clerk"); err != nil {
		t.Fatalf("own record: %v", err)
	}
	if _, err := svc.GetUser(noGrants, "other"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("foreign record err = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Grants(noGrants, "clerk"); err != nil {
		t.Fatalf("own grants: %v", err)
	}
	if _, err := svc.UserStoreAccess(noGrants, "clerk"); err != nil {
		t.Fatalf("own store access: %v", err)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := ctxWith(auth.PermissionSet{Users: true}, "manager")

	user, err := svc.CreateUser(ctx, NewUser{
		Username:      "NewHire",
		Password:      "plain-pw",
		LoginDuration: "8",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "newhire" {
		t.Fatalf("username = %q, want lowercase", user.Username)
	}
	stored := store.users["newhire"]
	if stored.PasswordHash == "plain-pw" || stored.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
	if err := auth.VerifyPassword(stored.PasswordHash, "plain-pw"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	if _, err := svc.CreateUser(ctx, NewUser{Username: "newhire", Password: "x", LoginDuration: "8"}); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate err = %v, want ErrExists", err)
	}
}

func TestCreateUserRejectsEmptyFields(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := ctxWith(auth.PermissionSet{Users: true}, "manager")

	for _, in := range []NewUser{
		{Username: "", Password: "pw"},
		{Username: "jdoe", Password: ""},
	} {
		if _, err := svc.CreateUser(ctx, in); !errors.Is(err, ErrInvalidData) {
			t.Fatalf("CreateUser(%+v) err = %v, want ErrInvalidData", in, err)
		}
	}
}

func TestUpdateUserPasswordNeedsAdmin(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "clerk", "old-pw")
	original := store.users["clerk"].PasswordHash
	svc := newTestService(t, store)

	newPW := "new-pw"

	// Self-service update without admin: the password field is dropped
	// silently, other fields still apply.
	name := "New Name"
	selfCtx := ctxWith(auth.PermissionSet{}, "clerk")
	updated, err := svc.UpdateUser(selfCtx, "clerk", UserUpdate{Name: &name, Password: &newPW})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if updated.Name != "New Name" {
		t.Fatalf("name = %q", updated.Name)
	}
	if store.users["clerk"].PasswordHash != original {
		t.Fatal("non-admin password change must be dropped")
	}

	adminCtx := ctxWith(auth.PermissionSet{Admin: true, Users: true}, "boss")
	if _, err := svc.UpdateUser(adminCtx, "clerk", UserUpdate{Password: &newPW}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if store.users["clerk"].PasswordHash == original {
		t.Fatal("admin password change did not apply")
	}
	if err := auth.VerifyPassword(store.users["clerk"].PasswordHash, newPW); err != nil {
		t.Fatalf("new hash does not verify: %v", err)
	}
}

func TestSearchProductsEmptyFilterSkipsStore(t *testing.T) {
	store := newFakeStore()
	store.products = []catalog.Product{{ID: "1"}}
	svc := newTestService(t, store)
	ctx := ctxWith(auth.PermissionSet{Query: true}, "clerk")

	items, err := svc.SearchProducts(ctx, catalog.Filter{Barcode: "   "})
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
	if store.searched {
		t.Fatal("empty filter must not reach the store")
	}
}

func TestSearchProductsAppliesRedaction(t *testing.T) {
	store := newFakeStore()
	cost := 9.5
	qty := 2.0
	store.products = []catalog.Product{{
		ID:      "1",
		AvgCost: &cost,
		Stores: map[string]*catalog.StoreStock{
			"C01": {Quantity: &qty},
			"C02": {Quantity: &qty},
		},
	}}
	svc := newTestService(t, store)

	principal := auth.Principal{
		Permissions: auth.PermissionSet{Query: true},
		StoreAccess: auth.StoreAccess{Stores: []string{"C02"}},
	}
	principal.Claims.Subject = "clerk"
	ctx := auth.ContextWithPrincipal(context.Background(), principal)

	items, err := svc.SearchProducts(ctx, catalog.Filter{Ref: "1"})
	if err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	p := items[0]
	if p.AvgCost != nil {
		t.Fatal("avg cost must be redacted without the cost capability")
	}
	if p.Stores["C01"] != nil {
		t.Fatal("store C01 must be redacted")
	}
	if p.Stores["C02"] == nil {
		t.Fatal("granted store C02 must stay visible")
	}
}

func TestReplaceGrantsRoundTrips(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "clerk", "pw")
	svc := newTestService(t, store)
	ctx := ctxWith(auth.PermissionSet{Permissions: true}, "manager")

	set := auth.PermissionSet{Query: true, Reports: true}
	if err := svc.ReplaceGrants(ctx, "Clerk", set); err != nil {
		t.Fatalf("ReplaceGrants: %v", err)
	}
	want := strings.Join(set.Grants(), ",")
	got := strings.Join(store.replaced["clerk"], ",")
	if got != want {
		t.Fatalf("stored grants = %q, want %q", got, want)
	}
}

func TestResolveUnknownUser(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	_, _, err := svc.Resolve(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordLogDefaultsFromContext(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	ctx := ctxWith(auth.PermissionSet{}, "clerk")
	ctx = auth.ContextWithToken(ctx, "tok-123")

	if err := svc.RecordLog(ctx, LogEntry{Route: "/products", Method: "POST"}); err != nil {
		t.Fatalf("RecordLog: %v", err)
	}
	if len(store.logEntries) != 1 {
		t.Fatalf("entries = %d", len(store.logEntries))
	}
	e := store.logEntries[0]
	if e.Username != "clerk" || e.Token != "tok-123" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Timestamp.IsZero() || time.Since(e.Timestamp) > time.Minute {
		t.Fatalf("timestamp not defaulted: %v", e.Timestamp)
	}
}

func TestDirectoryNotConfigured(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := ctxWith(auth.PermissionSet{Users: true}, "manager")

	if _, err := svc.DirectoryLookup(ctx, "clerk"); !errors.Is(err, ErrStore) {
		t.Fatalf("err = %v, want ErrStore", err)
	}
	name := "x"
	if err := svc.DirectoryModify(ctx, "clerk", &name, nil); !errors.Is(err, ErrStore) {
		t.Fatalf("err = %v, want ErrStore", err)
	}
}

type fakeDirectory struct {
	modified map[string][2]*string
	entries  map[string]directory.Entry
}

func (f *fakeDirectory) Lookup(ctx context.Context, username string) (directory.Entry, error) {
	e, ok := f.entries[username]
	if !ok {
		return directory.Entry{}, directory.ErrNotFound
	}
	return e, nil
}

func (f *fakeDirectory) ModifyAttributes(ctx context.Context, username string, name, email *string) error {
	if f.modified == nil {
		f.modified = map[string][2]*string{}
	}
	f.modified[username] = [2]*string{name, email}
	return nil
}

func TestUpdateUserSyncsDirectory(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "clerk", "pw")
	dir := &fakeDirectory{}

	tokens, err := auth.NewTokenService("unit-test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	svc := New(store, tokens, WithDirectory(dir))

	name := "Renamed"
	ctx := ctxWith(auth.PermissionSet{Users: true}, "manager")
	if _, err := svc.UpdateUser(ctx, "clerk", UserUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, ok := dir.modified["clerk"]
	if !ok || got[0] == nil || *got[0] != "Renamed" {
		t.Fatalf("directory not synced: %+v", dir.modified)
	}
}

func TestDeleteUserRequiresCapability(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "clerk", "pw")
	svc := newTestService(t, store)

	if err := svc.DeleteUser(ctxWith(auth.PermissionSet{}, "random"), "clerk"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteUser(ctxWith(auth.PermissionSet{Users: true}, "manager"), "clerk"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "clerk" {
		t.Fatalf("deleted = %v", store.deleted)
	}
}

func TestLatestVersionValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := ctxWith(auth.PermissionSet{}, "anyone")

	if _, err := svc.LatestVersion(ctx, "  "); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("err = %v, want ErrInvalidData", err)
	}
	if _, err := svc.LatestVersion(ctx, "android"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
