package policies_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
)

type mockDirectory struct {
	existsFn    func(ctx context.Context, scope policies.Scope) (bool, error)
	idsFn       func(ctx context.Context, t policies.EntityType) ([]uuid.UUID, error)
	memberFn    func(ctx context.Context, pageID, userID uuid.UUID) (bool, error)
	groupRoleFn func(ctx context.Context, groupID, userID uuid.UUID) (int, bool, error)
}

func (m *mockDirectory) Exists(ctx context.Context, scope policies.Scope) (bool, error) {
	return m.existsFn(ctx, scope)
}

func (m *mockDirectory) EntityIDs(ctx context.Context, t policies.EntityType) ([]uuid.UUID, error) {
	return m.idsFn(ctx, t)
}

func (m *mockDirectory) IsPageMember(ctx context.Context, pageID, userID uuid.UUID) (bool, error) {
	return m.memberFn(ctx, pageID, userID)
}

func (m *mockDirectory) GroupRole(ctx context.Context, groupID, userID uuid.UUID) (int, bool, error) {
	return m.groupRoleFn(ctx, groupID, userID)
}

func TestGateGlobal(t *testing.T) {
	gate := policies.NewGate(&mockDirectory{})

	admin := auth.Actor{ID: uuid.New(), SystemAdmin: true}
	if err := gate.Authorize(context.Background(), admin, policies.Global()); err != nil {
		t.Errorf("admin: err = %v", err)
	}

	user := auth.Actor{ID: uuid.New()}
	if err := gate.Authorize(context.Background(), user, policies.Global()); !errors.Is(err, policies.ErrPermissionDenied) {
		t.Errorf("user: err = %v, want ErrPermissionDenied", err)
	}
}

func TestGatePage(t *testing.T) {
	pageID := uuid.New()
	member := uuid.New()

	dir := &mockDirectory{
		memberFn: func(_ context.Context, p, u uuid.UUID) (bool, error) {
			return p == pageID && u == member, nil
		},
	}
	gate := policies.NewGate(dir)

	tests := []struct {
		name  string
		actor auth.Actor
		err   error
	}{
		{"member", auth.Actor{ID: member}, nil},
		{"non-member", auth.Actor{ID: uuid.New()}, policies.ErrPermissionDenied},
		{"admin non-member", auth.Actor{ID: uuid.New(), SystemAdmin: true}, policies.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(context.Background(), tt.actor, policies.Page(pageID))
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestGateGroup(t *testing.T) {
	groupID := uuid.New()
	roles := map[uuid.UUID]int{}

	admin, moderator, member := uuid.New(), uuid.New(), uuid.New()
	roles[admin] = policies.GroupRoleAdmin
	roles[moderator] = policies.GroupRoleModerator
	roles[member] = policies.GroupRoleMember

	dir := &mockDirectory{
		groupRoleFn: func(_ context.Context, g, u uuid.UUID) (int, bool, error) {
			if g != groupID {
				return 0, false, nil
			}
			role, ok := roles[u]
			return role, ok, nil
		},
	}
	gate := policies.NewGate(dir)

	tests := []struct {
		name  string
		actor auth.Actor
		err   error
	}{
		{"group admin", auth.Actor{ID: admin}, nil},
		{"group moderator", auth.Actor{ID: moderator}, nil},
		{"group member", auth.Actor{ID: member}, policies.ErrPermissionDenied},
		{"outsider", auth.Actor{ID: uuid.New()}, policies.ErrPermissionDenied},
		{"system admin", auth.Actor{ID: uuid.New(), SystemAdmin: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(context.Background(), tt.actor, policies.Group(groupID))
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestGateDirectoryError(t *testing.T) {
	boom := errors.New("db down")
	dir := &mockDirectory{
		memberFn: func(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
			return false, boom
		},
	}

	err := policies.NewGate(dir).Authorize(context.Background(), auth.Actor{ID: uuid.New()}, policies.Page(uuid.New()))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped directory error", err)
	}
	if errors.Is(err, policies.ErrPermissionDenied) {
		t.Error("directory failure should not read as permission denied")
	}
}

func TestGateInvalidScope(t *testing.T) {
	err := policies.NewGate(&mockDirectory{}).Authorize(context.Background(), auth.Actor{SystemAdmin: true}, policies.Scope{})
	if !errors.Is(err, policies.ErrInvalidEntityType) {
		t.Errorf("err = %v, want ErrInvalidEntityType", err)
	}
}
