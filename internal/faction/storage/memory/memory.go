// Package memory provides an in-memory Store for tests and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/storage"
)

// Store is a mutex-guarded in-memory implementation of storage.Store.
type Store struct {
	mu          sync.RWMutex
	factions    map[string]domain.Faction
	ranks       map[string]domain.Rank
	members     map[string]domain.Member
	invitations map[string]domain.Invitation
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		factions:    make(map[string]domain.Faction),
		ranks:       make(map[string]domain.Rank),
		members:     make(map[string]domain.Member),
		invitations: make(map[string]domain.Invitation),
	}
}

// Close implements storage.Store.
func (s *Store) Close() error { return nil }

// CreateFaction inserts a faction.
func (s *Store) CreateFaction(_ context.Context, faction domain.Faction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factions[faction.ID] = faction
	return nil
}

// CreateFactionWithRanks inserts a faction and its seed ranks atomically.
func (s *Store) CreateFactionWithRanks(_ context.Context, faction domain.Faction, ranks []domain.Rank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factions[faction.ID] = faction
	for _, rank := range ranks {
		s.ranks[rank.ID] = rank
	}
	return nil
}

// UpdateFaction replaces a faction by ID.
func (s *Store) UpdateFaction(_ context.Context, faction domain.Faction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.factions[faction.ID]; !ok {
		return storage.ErrNotFound
	}
	s.factions[faction.ID] = faction
	return nil
}

// GetFaction fetches a faction by ID.
func (s *Store) GetFaction(_ context.Context, id string) (domain.Faction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	faction, ok := s.factions[id]
	if !ok {
		return domain.Faction{}, storage.ErrNotFound
	}
	return faction, nil
}

// ListFactions returns every faction ordered by ID.
func (s *Store) ListFactions(_ context.Context) ([]domain.Faction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Faction, 0, len(s.factions))
	for _, faction := range s.factions {
		out = append(out, faction)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateRank inserts a rank.
func (s *Store) CreateRank(_ context.Context, rank domain.Rank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranks[rank.ID] = rank
	return nil
}

// UpdateRank replaces a rank by ID.
func (s *Store) UpdateRank(_ context.Context, rank domain.Rank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ranks[rank.ID]; !ok {
		return storage.ErrNotFound
	}
	s.ranks[rank.ID] = rank
	return nil
}

// DeleteRank removes a rank by ID.
func (s *Store) DeleteRank(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ranks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.ranks, id)
	return nil
}

// ListRanks returns every rank ordered by faction then number.
func (s *Store) ListRanks(_ context.Context) ([]domain.Rank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Rank, 0, len(s.ranks))
	for _, rank := range s.ranks {
		out = append(out, rank)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FactionID == out[j].FactionID {
			return out[i].Number < out[j].Number
		}
		return out[i].FactionID < out[j].FactionID
	})
	return out, nil
}

// CreateMember inserts a membership.
func (s *Store) CreateMember(_ context.Context, member domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[member.ID] = member
	return nil
}

// UpdateMember replaces a membership by ID.
func (s *Store) UpdateMember(_ context.Context, member domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.ID]; !ok {
		return storage.ErrNotFound
	}
	s.members[member.ID] = member
	return nil
}

// DeleteMember removes a membership by ID.
func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

// ListMembers returns every membership ordered by faction then character.
func (s *Store) ListMembers(_ context.Context) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Member, 0, len(s.members))
	for _, member := range s.members {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FactionID == out[j].FactionID {
			return out[i].CharacterID < out[j].CharacterID
		}
		return out[i].FactionID < out[j].FactionID
	})
	return out, nil
}

// CreateInvitation inserts an invitation.
func (s *Store) CreateInvitation(_ context.Context, invitation domain.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations[invitation.ID] = invitation
	return nil
}

// DeleteInvitation removes an invitation by ID.
func (s *Store) DeleteInvitation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.invitations, id)
	return nil
}

// ListInvitations returns every invitation ordered by faction then character.
func (s *Store) ListInvitations(_ context.Context) ([]domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Invitation, 0, len(s.invitations))
	for _, invitation := range s.invitations {
		out = append(out, invitation)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FactionID == out[j].FactionID {
			return out[i].CharacterID < out[j].CharacterID
		}
		return out[i].FactionID < out[j].FactionID
	})
	return out, nil
}

// AcceptInvitation removes the invitation and inserts the membership under
// one lock so no reader observes the half-applied state.
func (s *Store) AcceptInvitation(_ context.Context, invitationID string, member domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[invitationID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.invitations, invitationID)
	s.members[member.ID] = member
	return nil
}
