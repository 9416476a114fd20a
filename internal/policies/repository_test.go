package policies_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool {
	return &b
}

// directoryWith reports every scope in existing as present and counts
// membership lookups.
func directoryWith(existing ...policies.Scope) (*mockDirectory, *int) {
	lookups := 0
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.Key()] = true
	}
	return &mockDirectory{
		existsFn: func(_ context.Context, scope policies.Scope) (bool, error) {
			return known[scope.Key()], nil
		},
		idsFn: func(context.Context, policies.EntityType) ([]uuid.UUID, error) {
			return nil, nil
		},
		memberFn: func(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
			lookups++
			return false, nil
		},
		groupRoleFn: func(context.Context, uuid.UUID, uuid.UUID) (int, bool, error) {
			lookups++
			return 0, false, nil
		},
	}, &lookups
}

func TestResolveRejectsBeforeDatabase(t *testing.T) {
	dir, _ := directoryWith()
	sys := policies.New(nil, dir, discard())

	tests := []struct {
		name  string
		scope policies.Scope
		err   error
	}{
		{"zero scope", policies.Scope{}, policies.ErrInvalidEntityType},
		{"page without id", policies.Page(uuid.Nil), policies.ErrEntityIDRequired},
		{"missing page", policies.Page(uuid.New()), policies.ErrEntityNotFound},
		{"missing group", policies.Group(uuid.New()), policies.ErrEntityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := sys.Resolve(context.Background(), tt.scope)
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if p != nil {
				t.Errorf("policy = %+v, want nil", p)
			}
		})
	}
}

func TestResolveDirectoryError(t *testing.T) {
	boom := errors.New("directory down")
	dir, _ := directoryWith()
	dir.existsFn = func(context.Context, policies.Scope) (bool, error) {
		return false, boom
	}
	sys := policies.New(nil, dir, discard())

	_, err := sys.Resolve(context.Background(), policies.Group(uuid.New()))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want directory error", err)
	}
	if errors.Is(err, policies.ErrEntityNotFound) {
		t.Error("directory failure should not read as a missing entity")
	}
}

func TestUpdateChecksExistenceBeforePermission(t *testing.T) {
	existing := policies.Page(uuid.New())
	dir, lookups := directoryWith(existing)
	sys := policies.New(nil, dir, discard())
	outsider := auth.Actor{ID: uuid.New()}
	cmd := policies.UpdateCommand{AutoModerationEnabled: boolPtr(true)}

	_, err := sys.Update(context.Background(), outsider, policies.Page(uuid.New()), cmd)
	if !errors.Is(err, policies.ErrEntityNotFound) {
		t.Fatalf("missing page: err = %v, want ErrEntityNotFound", err)
	}
	if *lookups != 0 {
		t.Errorf("membership lookups = %d, want 0 for a missing page", *lookups)
	}

	_, err = sys.Update(context.Background(), outsider, existing, cmd)
	if !errors.Is(err, policies.ErrPermissionDenied) {
		t.Fatalf("existing page: err = %v, want ErrPermissionDenied", err)
	}
	if *lookups != 1 {
		t.Errorf("membership lookups = %d, want 1", *lookups)
	}

	_, err = sys.Update(context.Background(), outsider, policies.Global(), cmd)
	if !errors.Is(err, policies.ErrPermissionDenied) {
		t.Errorf("global: err = %v, want ErrPermissionDenied", err)
	}
}

func TestListInvalidType(t *testing.T) {
	dir, _ := directoryWith()
	sys := policies.New(nil, dir, discard())

	for _, typ := range []policies.EntityType{0, 4, 9} {
		if _, err := sys.List(context.Background(), typ, uuid.New()); !errors.Is(err, policies.ErrInvalidEntityType) {
			t.Errorf("List(%d): err = %v, want ErrInvalidEntityType", typ, err)
		}
	}
}

func TestBootstrapAndRemoveValidateScope(t *testing.T) {
	dir, _ := directoryWith()
	sys := policies.New(nil, dir, discard())

	if _, err := sys.Bootstrap(context.Background(), policies.Scope{}, uuid.New()); !errors.Is(err, policies.ErrInvalidEntityType) {
		t.Errorf("Bootstrap: err = %v, want ErrInvalidEntityType", err)
	}
	if err := sys.Remove(context.Background(), policies.Group(uuid.Nil)); !errors.Is(err, policies.ErrEntityIDRequired) {
		t.Errorf("Remove: err = %v, want ErrEntityIDRequired", err)
	}
}

// openTestDB connects to the database named by AGORA_TEST_DSN. The schema
// must already be migrated with cmd/migrate.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("AGORA_TEST_DSN")
	if dsn == "" {
		t.Skip("AGORA_TEST_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.PingContext(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func TestResolveIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	page := policies.Page(uuid.New())
	dir, _ := directoryWith(page)
	sys := policies.New(db, dir, discard())
	t.Cleanup(func() { sys.Remove(context.Background(), page) })

	first, err := sys.Resolve(ctx, page)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if !first.ModerationRequired {
		t.Error("resolved policy should require moderation")
	}
	if first.AutoModerationEnabled != policies.DefaultAutoOnRead {
		t.Errorf("auto = %v, want %v", first.AutoModerationEnabled, policies.DefaultAutoOnRead)
	}

	second, err := sys.Resolve(ctx, page)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second resolve id = %v, want %v", second.ID, first.ID)
	}
}

func TestResolveConcurrentIntegration(t *testing.T) {
	db := openTestDB(t)

	group := policies.Group(uuid.New())
	dir, _ := directoryWith(group)
	sys := policies.New(db, dir, discard())
	t.Cleanup(func() { sys.Remove(context.Background(), group) })

	const n = 8
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := sys.Resolve(context.Background(), group)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = p.ID
		}()
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("resolve %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("resolve %d id = %v, want %v", i, ids[i], ids[0])
		}
	}
}

func TestBootstrapIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	group := policies.Group(uuid.New())
	dir, _ := directoryWith(group)
	sys := policies.New(db, dir, discard())
	t.Cleanup(func() { sys.Remove(context.Background(), group) })

	creator := uuid.New()
	created, err := sys.Bootstrap(ctx, group, creator)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !created.AutoModerationEnabled || !created.ModerationRequired {
		t.Errorf("bootstrap = %+v, want auto and required", created)
	}

	resolved, err := sys.Resolve(ctx, group)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != created.ID || !resolved.AutoModerationEnabled {
		t.Errorf("resolve = %+v, want bootstrapped record", resolved)
	}
}

func TestUpdateGlobalIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	dir, _ := directoryWith()
	sys := policies.New(db, dir, discard())
	admin := auth.Actor{ID: uuid.New(), SystemAdmin: true}

	if _, err := sys.Update(ctx, admin, policies.Global(), policies.UpdateCommand{
		AutoModerationEnabled: boolPtr(false),
		ModerationRequired:    boolPtr(true),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cmds := []policies.UpdateCommand{
		{AutoModerationEnabled: boolPtr(true)},
		{ModerationRequired: boolPtr(false)},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(cmds))
	for i, cmd := range cmds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = sys.Update(context.Background(), admin, policies.Global(), cmd)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	list, err := sys.List(ctx, policies.EntityGlobal, admin.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("global policies = %d, want 1", len(list))
	}
	if !list[0].AutoModerationEnabled || list[0].ModerationRequired {
		t.Errorf("global = %+v, want both concurrent changes kept", list[0])
	}
	if list[0].EntityID != nil {
		t.Errorf("global entity id = %v, want nil", list[0].EntityID)
	}
}
