// Package main provides a CLI for administering the faction registry. Each
// invocation dispatches a single operation against the SQLite-backed engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/louisbranch/ironhold/internal/faction/command"
	factioncfg "github.com/louisbranch/ironhold/internal/faction/config"
	"github.com/louisbranch/ironhold/internal/faction/engine"
	"github.com/louisbranch/ironhold/internal/faction/notify"
	"github.com/louisbranch/ironhold/internal/faction/storage/sqlite"
	"github.com/louisbranch/ironhold/internal/platform/config"
)

type envConfig struct {
	DBPath       string `env:"IRONHOLD_DB_PATH" envDefault:"ironhold.db"`
	SettingsPath string `env:"IRONHOLD_SETTINGS_PATH"`
	AdminIDs     string `env:"IRONHOLD_ADMIN_IDS"`
	OverrideIDs  string `env:"IRONHOLD_OVERRIDE_IDS"`
}

// envAccess grants admin and override status from comma-separated ID lists.
type envAccess struct {
	admins    map[string]bool
	overrides map[string]bool
}

func newEnvAccess(adminIDs, overrideIDs string) envAccess {
	return envAccess{admins: splitIDs(adminIDs), overrides: splitIDs(overrideIDs)}
}

func splitIDs(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			out[id] = true
		}
	}
	return out
}

func (a envAccess) IsAdmin(_ context.Context, characterID string) bool {
	return a.admins[characterID]
}

func (a envAccess) HasOverride(_ context.Context, characterID string) bool {
	return a.overrides[characterID]
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var envCfg envConfig
	if err := config.ParseEnv(&envCfg); err != nil {
		config.Exitf("ironholdctl: %v", err)
	}
	settings, err := factioncfg.Load(envCfg.SettingsPath)
	if err != nil {
		config.Exitf("ironholdctl: %v", err)
	}

	cmd, actorID, err := parseCommand(os.Args[1], os.Args[2:])
	if err != nil {
		config.Exitf("ironholdctl: %v", err)
	}

	store, err := sqlite.Open(envCfg.DBPath)
	if err != nil {
		config.Exitf("ironholdctl: open store: %v", err)
	}
	defer store.Close()

	eng := engine.New(store, newEnvAccess(envCfg.AdminIDs, envCfg.OverrideIDs), notify.Log{}, settings, engine.Options{})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := eng.Dispatch(ctx, command.Request{ActorID: actorID, Command: cmd})
	if err != nil {
		config.Exitf("ironholdctl: %v", err)
	}
	printResult(result)
}

// parseCommand builds the operation for the named subcommand from its flags.
func parseCommand(name string, args []string) (command.Command, string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	actor := fs.String("actor", "", "acting character ID")
	faction := fs.String("faction", "", "faction ID or slash path")
	factionName := fs.String("name", "", "faction or rank name")
	parent := fs.String("parent", "", "parent faction ID or slash path")
	toRoot := fs.Bool("to-root", false, "detach the faction to the root level")
	confirm := fs.String("confirm", "", "exact faction name, confirming deletion")
	key := fs.String("key", "", "config key")
	value := fs.String("value", "", "config value")
	number := fs.Int("number", 0, "rank number")
	newNumber := fs.Int("new-number", 0, "new rank number")
	permissions := fs.String("permissions", "", "space-separated permission tokens")
	character := fs.String("character", "", "character ID")
	rank := fs.String("rank", "", "rank number or name prefix")
	title := fs.String("title", "", "member title")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	var cmd command.Command
	switch name {
	case "faction-create":
		cmd = command.FactionCreate{Name: *factionName, Parent: *parent}
	case "faction-rename":
		cmd = command.FactionRename{Faction: *faction, Name: *factionName}
	case "faction-reparent":
		cmd = command.FactionReparent{Faction: *faction, Parent: *parent, ToRoot: *toRoot}
	case "faction-delete":
		cmd = command.FactionDelete{Faction: *faction, Confirm: *confirm}
	case "faction-list":
		cmd = command.FactionList{Faction: *faction}
	case "faction-find":
		cmd = command.FactionFind{Faction: *faction}
	case "config-set":
		cmd = command.ConfigSet{Faction: *faction, Key: *key, Value: *value}
	case "config-list":
		cmd = command.ConfigList{Faction: *faction}
	case "rank-create":
		cmd = command.RankCreate{Faction: *faction, Number: *number, Name: *factionName}
	case "rank-rename":
		cmd = command.RankRename{Faction: *faction, Number: *number, Name: *factionName}
	case "rank-renumber":
		cmd = command.RankRenumber{Faction: *faction, Number: *number, NewNumber: *newNumber}
	case "rank-delete":
		cmd = command.RankDelete{Faction: *faction, Number: *number}
	case "rank-permissions":
		cmd = command.RankSetPermissions{Faction: *faction, Number: *number, Permissions: *permissions}
	case "rank-list":
		cmd = command.RankList{Faction: *faction}
	case "member-add":
		cmd = command.MemberAdd{Faction: *faction, Character: *character, Rank: *rank}
	case "member-remove":
		cmd = command.MemberRemove{Faction: *faction, Character: *character}
	case "member-rank":
		cmd = command.MemberSetRank{Faction: *faction, Character: *character, Rank: *rank}
	case "member-permissions":
		cmd = command.MemberSetPermissions{Faction: *faction, Character: *character, Permissions: *permissions}
	case "member-title":
		cmd = command.MemberSetTitle{Faction: *faction, Character: *character, Title: *title}
	case "member-list":
		cmd = command.MemberList{Faction: *faction}
	case "invite":
		cmd = command.InviteExtend{Faction: *faction, Character: *character}
	case "invite-rescind":
		cmd = command.InviteRescind{Faction: *faction, Character: *character}
	case "invite-accept":
		cmd = command.InviteAccept{Faction: *faction}
	case "invite-reject":
		cmd = command.InviteReject{Faction: *faction}
	case "invite-list":
		cmd = command.InviteList{Faction: *faction}
	default:
		return nil, "", fmt.Errorf("unknown subcommand %q", name)
	}
	return cmd, *actor, nil
}

func printResult(result command.Result) {
	fmt.Println(result.Message)
	for _, snapshot := range result.Factions {
		fmt.Printf("  %s", snapshot.Key)
		if len(snapshot.Children) > 0 {
			names := make([]string, 0, len(snapshot.Children))
			for _, child := range snapshot.Children {
				names = append(names, child.Key)
			}
			fmt.Printf(" (%s)", strings.Join(names, ", "))
		}
		fmt.Println()
	}
	for _, rank := range result.Ranks {
		fmt.Printf("  %d %s: %s\n", rank.Number, rank.Name, strings.Join(rank.Permissions, " "))
	}
	for _, member := range result.Members {
		line := fmt.Sprintf("  %s rank %d %s", member.Character, member.Rank.Number, member.Rank.Name)
		if member.Data.Title != "" {
			line += " " + fmt.Sprintf("%q", member.Data.Title)
		}
		fmt.Println(line)
	}
	for _, invitation := range result.Invitations {
		fmt.Printf("  %s invited by %s\n", invitation.Character, invitation.Inviter)
	}
	for _, entry := range result.Config {
		fmt.Printf("  %s = %s (%s)\n", entry.Key, entry.Value, entry.Description)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ironholdctl <subcommand> [flags]")
	fmt.Fprintln(os.Stderr, "subcommands:")
	fmt.Fprintln(os.Stderr, "  faction-create faction-rename faction-reparent faction-delete faction-list faction-find")
	fmt.Fprintln(os.Stderr, "  config-set config-list")
	fmt.Fprintln(os.Stderr, "  rank-create rank-rename rank-renumber rank-delete rank-permissions rank-list")
	fmt.Fprintln(os.Stderr, "  member-add member-remove member-rank member-permissions member-title member-list")
	fmt.Fprintln(os.Stderr, "  invite invite-rescind invite-accept invite-reject invite-list")
}
