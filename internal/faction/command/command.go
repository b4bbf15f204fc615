// Package command defines the typed operations the faction engine accepts
// and the result shape it returns. Each operation is its own variant struct;
// the engine dispatches on the concrete type, so malformed or unknown
// operations fail before any state is touched.
package command

import (
	"github.com/louisbranch/ironhold/internal/faction/domain"
	"github.com/louisbranch/ironhold/internal/faction/tree"
)

// Command is the closed set of engine operations. Only types in this package
// implement it.
type Command interface {
	isCommand()
}

// Request pairs an acting character with one command. ActorID identifies who
// is performing the operation for authorization purposes.
type Request struct {
	ActorID string
	Command Command
}

// ConfigEntry is one faction configuration key with its serialized value.
type ConfigEntry struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// Result carries the outcome of a command. Message is always set on success;
// the remaining fields are populated per operation.
type Result struct {
	Message string `json:"message"`

	Faction     *tree.Snapshot              `json:"faction,omitempty"`
	Rank        *domain.RankSnapshot        `json:"rank,omitempty"`
	Member      *domain.MemberSnapshot      `json:"member,omitempty"`
	Invitation  *domain.InvitationSnapshot  `json:"invitation,omitempty"`
	Factions    []tree.Snapshot             `json:"factions,omitempty"`
	Ranks       []domain.RankSnapshot       `json:"ranks,omitempty"`
	Members     []domain.MemberSnapshot     `json:"members,omitempty"`
	Invitations []domain.InvitationSnapshot `json:"invitations,omitempty"`
	Config      []ConfigEntry               `json:"config,omitempty"`
}

// Faction lifecycle operations. Faction fields hold an ID or slash-delimited
// path resolved by the engine.

// FactionCreate creates a faction, optionally under a parent.
type FactionCreate struct {
	Name   string
	Parent string // optional parent reference
}

// FactionRename renames a faction.
type FactionRename struct {
	Faction string
	Name    string
}

// FactionReparent moves a faction under a new parent, or to the root when
// Parent is empty and ToRoot is set.
type FactionReparent struct {
	Faction string
	Parent  string
	ToRoot  bool
}

// FactionDelete soft-deletes a faction. Confirm must match the faction's
// exact name.
type FactionDelete struct {
	Faction string
	Confirm string
}

// FactionList lists root factions, or a faction's subtree when Faction is set.
type FactionList struct {
	Faction string
}

// FactionFind resolves a reference and returns the faction with its parent
// chain and children.
type FactionFind struct {
	Faction string
}

// ConfigSet updates one faction configuration key.
type ConfigSet struct {
	Faction string
	Key     string
	Value   string
}

// ConfigList returns every faction configuration key with its current value.
type ConfigList struct {
	Faction string
}

// Rank registry operations.

// RankCreate adds a rank with the given number and name.
type RankCreate struct {
	Faction string
	Number  int
	Name    string
}

// RankRename renames the rank with the given number.
type RankRename struct {
	Faction string
	Number  int
	Name    string
}

// RankRenumber moves a rank to a new number; holders follow the rank.
type RankRenumber struct {
	Faction   string
	Number    int
	NewNumber int
}

// RankDelete removes an empty, non-reserved rank.
type RankDelete struct {
	Faction string
	Number  int
}

// RankSetPermissions replaces a rank's permission set.
type RankSetPermissions struct {
	Faction     string
	Number      int
	Permissions string // whitespace-separated tokens, prefix-matched
}

// RankList lists the faction's ranks.
type RankList struct {
	Faction string
}

// Membership operations. Character identifies the target character; rank
// references accept a number or a name.

// MemberAdd directly enrolls a character, bypassing the invitation flow.
type MemberAdd struct {
	Faction   string
	Character string
	Rank      string // optional; defaults to the faction's start rank
}

// MemberRemove removes a character from the faction.
type MemberRemove struct {
	Faction   string
	Character string
}

// MemberSetRank moves a member to a different rank.
type MemberSetRank struct {
	Faction   string
	Character string
	Rank      string
}

// MemberSetPermissions replaces a member's permission overrides.
type MemberSetPermissions struct {
	Faction     string
	Character   string
	Permissions string
}

// MemberSetTitle sets a member's title. Members may set their own.
type MemberSetTitle struct {
	Faction   string
	Character string
	Title     string
}

// MemberList lists the faction's roster.
type MemberList struct {
	Faction string
}

// Invitation operations.

// InviteExtend offers membership to a character.
type InviteExtend struct {
	Faction   string
	Character string
}

// InviteRescind withdraws a pending invitation.
type InviteRescind struct {
	Faction   string
	Character string
}

// InviteAccept joins the actor to the faction at its start rank.
type InviteAccept struct {
	Faction string
}

// InviteReject declines the actor's pending invitation.
type InviteReject struct {
	Faction string
}

// InviteList lists pending invitations: a faction's when Faction is set,
// otherwise the actor's own.
type InviteList struct {
	Faction string
}

func (FactionCreate) isCommand()        {}
func (FactionRename) isCommand()        {}
func (FactionReparent) isCommand()      {}
func (FactionDelete) isCommand()        {}
func (FactionList) isCommand()          {}
func (FactionFind) isCommand()          {}
func (ConfigSet) isCommand()            {}
func (ConfigList) isCommand()           {}
func (RankCreate) isCommand()           {}
func (RankRename) isCommand()           {}
func (RankRenumber) isCommand()         {}
func (RankDelete) isCommand()           {}
func (RankSetPermissions) isCommand()   {}
func (RankList) isCommand()             {}
func (MemberAdd) isCommand()            {}
func (MemberRemove) isCommand()         {}
func (MemberSetRank) isCommand()        {}
func (MemberSetPermissions) isCommand() {}
func (MemberSetTitle) isCommand()       {}
func (MemberList) isCommand()           {}
func (InviteExtend) isCommand()         {}
func (InviteRescind) isCommand()        {}
func (InviteAccept) isCommand()         {}
func (InviteReject) isCommand()         {}
func (InviteList) isCommand()           {}
