// Package engine validates, authorizes, and applies faction operations. Every
// mutation runs against a consistent snapshot of the stored state: structural
// operations (tree shape, rank numbering) hold an exclusive lock over the
// whole tree, content operations hold a shared lock plus a per-faction mutex,
// and read operations hold only the shared lock.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/ironhold/internal/faction/command"
	"github.com/louisbranch/ironhold/internal/faction/config"
	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/notify"
	"github.com/louisbranch/ironhold/internal/faction/policy"
	"github.com/louisbranch/ironhold/internal/faction/storage"
	"github.com/louisbranch/ironhold/internal/faction/tree"
	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
	"github.com/louisbranch/ironhold/internal/platform/id"
)

// Options overrides the engine's clock and ID generator, mainly for tests.
type Options struct {
	Now   func() time.Time
	NewID func() (string, error)
}

// Engine dispatches faction commands.
type Engine struct {
	store    storage.Store
	access   policy.Access
	notifier notify.Notifier
	cfg      config.Config
	now      func() time.Time
	newID    func() (string, error)

	// structural serializes tree-shape and rank-numbering mutations against
	// everything else; factionLocks serializes content mutations per faction.
	structural   sync.RWMutex
	factionLocks sync.Map
}

// New builds an engine. The notifier may be nil, in which case notifications
// are dropped.
func New(store storage.Store, access policy.Access, notifier notify.Notifier, cfg config.Config, opts Options) *Engine {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Engine{
		store:    store,
		access:   access,
		notifier: notifier,
		cfg:      cfg,
		now:      now,
		newID:    newID,
	}
}

// Dispatch resolves, authorizes, and applies one command. On failure the
// stored state is untouched and the error carries a machine-readable code.
func (e *Engine) Dispatch(ctx context.Context, req command.Request) (command.Result, error) {
	switch cmd := req.Command.(type) {
	case command.FactionCreate:
		return e.factionCreate(ctx, req.ActorID, cmd)
	case command.FactionRename:
		return e.factionRename(ctx, req.ActorID, cmd)
	case command.FactionReparent:
		return e.factionReparent(ctx, req.ActorID, cmd)
	case command.FactionDelete:
		return e.factionDelete(ctx, req.ActorID, cmd)
	case command.FactionList:
		return e.factionList(ctx, cmd)
	case command.FactionFind:
		return e.factionFind(ctx, cmd)
	case command.ConfigSet:
		return e.configSet(ctx, req.ActorID, cmd)
	case command.ConfigList:
		return e.configList(ctx, req.ActorID, cmd)
	case command.RankCreate:
		return e.rankCreate(ctx, req.ActorID, cmd)
	case command.RankRename:
		return e.rankRename(ctx, req.ActorID, cmd)
	case command.RankRenumber:
		return e.rankRenumber(ctx, req.ActorID, cmd)
	case command.RankDelete:
		return e.rankDelete(ctx, req.ActorID, cmd)
	case command.RankSetPermissions:
		return e.rankSetPermissions(ctx, req.ActorID, cmd)
	case command.RankList:
		return e.rankList(ctx, cmd)
	case command.MemberAdd:
		return e.memberAdd(ctx, req.ActorID, cmd)
	case command.MemberRemove:
		return e.memberRemove(ctx, req.ActorID, cmd)
	case command.MemberSetRank:
		return e.memberSetRank(ctx, req.ActorID, cmd)
	case command.MemberSetPermissions:
		return e.memberSetPermissions(ctx, req.ActorID, cmd)
	case command.MemberSetTitle:
		return e.memberSetTitle(ctx, req.ActorID, cmd)
	case command.MemberList:
		return e.memberList(ctx, cmd)
	case command.InviteExtend:
		return e.inviteExtend(ctx, req.ActorID, cmd)
	case command.InviteRescind:
		return e.inviteRescind(ctx, req.ActorID, cmd)
	case command.InviteAccept:
		return e.inviteAccept(ctx, req.ActorID, cmd)
	case command.InviteReject:
		return e.inviteReject(ctx, req.ActorID, cmd)
	case command.InviteList:
		return e.inviteList(ctx, req.ActorID, cmd)
	default:
		return command.Result{}, apperrors.New(apperrors.CodeCommandUnknown, "unknown faction operation")
	}
}

// loadResolver reads a full snapshot and wraps it in a policy resolver.
func (e *Engine) loadResolver(ctx context.Context) (*policy.Resolver, error) {
	factions, err := e.store.ListFactions(ctx)
	if err != nil {
		return nil, err
	}
	ranks, err := e.store.ListRanks(ctx)
	if err != nil {
		return nil, err
	}
	members, err := e.store.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	invitations, err := e.store.ListInvitations(ctx)
	if err != nil {
		return nil, err
	}
	view := policy.NewView(tree.NewIndex(factions), ranks, members, invitations)
	return policy.NewResolver(view, e.access, e.cfg.BuiltinSet()), nil
}

// lockFaction returns the content mutex for one faction.
func (e *Engine) lockFaction(factionID string) *sync.Mutex {
	mu, _ := e.factionLocks.LoadOrStore(factionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// resolveAndLock resolves a faction reference under the shared lock, acquires
// that faction's content mutex, and reloads the snapshot so validation runs
// against state no concurrent content operation can move. The returned unlock
// releases the faction mutex; the caller already holds the shared lock.
func (e *Engine) resolveAndLock(ctx context.Context, ref string) (*policy.Resolver, domain.Faction, func(), error) {
	resolver, err := e.loadResolver(ctx)
	if err != nil {
		return nil, domain.Faction{}, nil, err
	}
	faction, err := resolver.View().Tree.Resolve(ref)
	if err != nil {
		return nil, domain.Faction{}, nil, err
	}

	mu := e.lockFaction(faction.ID)
	mu.Lock()

	resolver, err = e.loadResolver(ctx)
	if err != nil {
		mu.Unlock()
		return nil, domain.Faction{}, nil, err
	}
	faction, ok := resolver.View().Tree.Get(faction.ID)
	if !ok || resolver.View().Tree.IsDeleted(faction.ID) {
		mu.Unlock()
		return nil, domain.Faction{}, nil, tree.ErrNotFound
	}
	return resolver, faction, mu.Unlock, nil
}

// hasOverride reports whether the actor holds the tree-management capability.
// Admin membership implies override.
func (e *Engine) hasOverride(ctx context.Context, actorID string) bool {
	if e.access == nil {
		return false
	}
	return e.access.HasOverride(ctx, actorID) || e.access.IsAdmin(ctx, actorID)
}

// factionRef is the minimal faction payload attached to most results.
func factionRef(f domain.Faction) *tree.Snapshot {
	return &tree.Snapshot{ID: f.ID, Key: f.Key}
}
