package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/schedule"
)

// IdentifiersOptions holds flags for the identifiers command.
type IdentifiersOptions struct {
	*RootOptions

	Types     []string
	Invites   bool
	Usernames bool
	Tasks     bool
	NoSkip    bool
}

// Identifier is one listed entry, shaped for the JSON output.
type Identifier struct {
	Link string `json:"link"`
	Kind string `json:"kind"` // "invite" | "username"
	Type string `json:"type,omitempty"`
	Path string `json:"path"`
}

// NewIdentifiersCommand creates the identifiers command.
func NewIdentifiersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentifiersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "identifiers <records-dir>",
		Short: "List the live identifiers stored in the records",
		Long: `Identifiers lists every live invite link and username found in the
record set, without contacting the platform. Records whose current
status is banned, deleted or unknown are left out unless --no-skip is
given.

Example:
  tgstatus identifiers ./records
  tgstatus identifiers ./records --invites --tasks`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentifiers(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "only list these entity types (channel,group,user,bot,website)")
	cmd.Flags().BoolVar(&opts.Invites, "invites", false, "list invite links only")
	cmd.Flags().BoolVar(&opts.Usernames, "usernames", false, "list usernames only")
	cmd.Flags().BoolVar(&opts.Tasks, "tasks", false, "prefix each line as a markdown task item")
	cmd.Flags().BoolVar(&opts.NoSkip, "no-skip", false, "include records with banned, deleted or unknown status")

	return cmd
}

func runIdentifiers(cmd *cobra.Command, opts *IdentifiersOptions, dir string) error {
	setupLogging(opts.Verbose)

	if opts.Invites && opts.Usernames {
		return NewExitError(ExitCommandError, "--invites and --usernames are mutually exclusive")
	}
	wantInvites := !opts.Usernames
	wantUsernames := !opts.Invites
	kinds := schedule.ParseKindSet(opts.Types)

	paths, err := scanRecords(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot scan records", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no records found in %s", dir))
	}

	var idents []Identifier
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("cannot read record", "path", path, "error", err)
			continue
		}
		rec, perr := record.Parse(path, data)
		if rec == nil {
			slog.Debug("unparsable record", "path", path, "error", perr)
			continue
		}
		if len(kinds) > 0 && !kinds[rec.Kind] {
			continue
		}
		if !opts.NoSkip && hiddenStatus(rec) {
			continue
		}

		if wantInvites {
			for _, inv := range rec.ActiveInvites() {
				idents = append(idents, Identifier{
					Link: inv.URL(),
					Kind: "invite",
					Type: string(rec.Kind),
					Path: path,
				})
			}
		}
		if wantUsernames {
			for _, u := range rec.Usernames {
				if u.Struck {
					continue
				}
				idents = append(idents, Identifier{
					Link: "https://t.me/" + u.Handle,
					Kind: "username",
					Type: string(rec.Kind),
					Path: path,
				})
			}
		}
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.JSON() {
		return formatter.Success(idents)
	}

	out := cmd.OutOrStdout()
	for _, ident := range idents {
		if opts.Tasks {
			fmt.Fprintf(out, "- [ ] %s\n", ident.Link)
		} else {
			fmt.Fprintf(out, "%s\t%s\n", ident.Link, ident.Path)
		}
	}
	return nil
}

// hiddenStatus reports whether a record's current status excludes it
// from the listing by default.
func hiddenStatus(rec *record.EntityRecord) bool {
	cur, ok := rec.CurrentStatus()
	if !ok {
		return false
	}
	switch cur.Status {
	case record.StatusBanned, record.StatusDeleted, record.StatusUnknown:
		return true
	}
	return false
}
