package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Dispatch errors
	CodeCommandUnknown Code = "COMMAND_UNKNOWN"

	// Faction errors
	CodeFactionReferenceRequired Code = "FACTION_REFERENCE_REQUIRED"
	CodeFactionNotFound          Code = "FACTION_NOT_FOUND"
	CodeFactionNameRequired      Code = "FACTION_NAME_REQUIRED"
	CodeFactionNameInvalid       Code = "FACTION_NAME_INVALID"
	CodeFactionNameConflict      Code = "FACTION_NAME_CONFLICT"
	CodeFactionSelfParent        Code = "FACTION_SELF_PARENT"
	CodeFactionCycleAncestor     Code = "FACTION_CYCLE_ANCESTOR"
	CodeFactionCycleDescendant   Code = "FACTION_CYCLE_DESCENDANT"
	CodeFactionDeleteConfirm     Code = "FACTION_DELETE_CONFIRM"
	CodeFactionManageForbidden   Code = "FACTION_MANAGE_FORBIDDEN"

	// Faction config errors
	CodeConfigForbidden    Code = "CONFIG_FORBIDDEN"
	CodeConfigKeyUnknown   Code = "CONFIG_KEY_UNKNOWN"
	CodeConfigValueInvalid Code = "CONFIG_VALUE_INVALID"

	// Rank errors
	CodeRankNumberRequired  Code = "RANK_NUMBER_REQUIRED"
	CodeRankNotFound        Code = "RANK_NOT_FOUND"
	CodeRankNameRequired    Code = "RANK_NAME_REQUIRED"
	CodeRankNumberConflict  Code = "RANK_NUMBER_CONFLICT"
	CodeRankNameConflict    Code = "RANK_NAME_CONFLICT"
	CodeRankReserved        Code = "RANK_RESERVED"
	CodeRankHasHolders      Code = "RANK_HAS_HOLDERS"
	CodeRankManageForbidden Code = "RANK_MANAGE_FORBIDDEN"
	CodeStartRankInvalid    Code = "START_RANK_INVALID"

	// Permission token errors
	CodePermissionsRequired Code = "PERMISSIONS_REQUIRED"
	CodePermissionUnknown   Code = "PERMISSION_UNKNOWN"

	// Member errors
	CodeCharacterRequired   Code = "CHARACTER_REQUIRED"
	CodeMemberMissing       Code = "MEMBER_MISSING"
	CodeMemberExists        Code = "MEMBER_EXISTS"
	CodeMemberAuthority     Code = "MEMBER_AUTHORITY"
	CodeMemberTitleRequired Code = "MEMBER_TITLE_REQUIRED"
	CodeRosterForbidden     Code = "ROSTER_FORBIDDEN"

	// Invitation errors
	CodeInviteExists    Code = "INVITE_EXISTS"
	CodeInviteMissing   Code = "INVITE_MISSING"
	CodeInviteForbidden Code = "INVITE_FORBIDDEN"
)

// Kind classifies codes into the four failure categories the engine reports.
type Kind string

const (
	// KindBadRequest covers missing/invalid/ambiguous parameters and
	// domain invariant violations such as cycles or reserved-rank deletion.
	KindBadRequest Kind = "BAD_REQUEST"
	// KindForbidden covers authorization failures.
	KindForbidden Kind = "FORBIDDEN"
	// KindNotFound covers unresolvable faction/rank/character references.
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict covers uniqueness violations on names, numbers,
	// memberships, and invitations.
	KindConflict Kind = "CONFLICT"
)

// Kind maps a code to its failure category.
func (c Code) Kind() Kind {
	switch c {
	case CodeNotFound,
		CodeFactionNotFound,
		CodeRankNotFound:
		return KindNotFound

	case CodeFactionManageForbidden,
		CodeConfigForbidden,
		CodeRankManageForbidden,
		CodeRosterForbidden,
		CodeInviteForbidden:
		return KindForbidden

	case CodeFactionNameConflict,
		CodeRankNumberConflict,
		CodeRankNameConflict,
		CodeMemberExists,
		CodeInviteExists:
		return KindConflict
	}
	return KindBadRequest
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindForbidden:
		return codes.PermissionDenied
	case KindNotFound:
		return codes.NotFound
	case KindConflict:
		return codes.AlreadyExists
	default:
		return codes.InvalidArgument
	}
}
