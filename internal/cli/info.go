package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DarthJahus/telegram-fraud-network/internal/config"
	"github.com/DarthJahus/telegram-fraud-network/internal/lookup"
	"github.com/DarthJahus/telegram-fraud-network/internal/record"
	"github.com/DarthJahus/telegram-fraud-network/internal/resolve"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions

	User  string
	Delay int
}

// infoResult is the JSON shape of a single lookup.
type infoResult struct {
	Identifier string        `json:"identifier"`
	Status     record.Status `json:"status"`
	ID         int64         `json:"id,omitempty"`
	Username   string        `json:"username,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Text       string        `json:"text,omitempty"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts, Delay: -1}

	cmd := &cobra.Command{
		Use:   "info <identifier>",
		Short: "Fetch one entity and print a fresh record skeleton",
		Long: `Info resolves a single identifier against the platform and prints a
record skeleton for it: the confirmed identifiers plus a status block
holding the observed status. Saving the output as a markdown file adds
the entity to the tracked set.

The identifier may be a numeric id, a @username (or t.me link), or an
invite link (https://t.me/+hash or +hash).

Example:
  tgstatus info @somechannel
  tgstatus info https://t.me/+AbCdEf123 > records/new-entity.md`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "account session to use (token read from <secrets_dir>/<user>.token)")
	cmd.Flags().IntVar(&opts.Delay, "delay", -1, "seconds to wait before the platform call (default from config)")

	return cmd
}

func runInfo(cmd *cobra.Command, opts *InfoOptions, identifier string) error {
	setupLogging(opts.Verbose)

	cand, err := parseIdentifier(identifier)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid identifier", err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}
	if opts.Delay >= 0 {
		cfg.DelaySeconds = opts.Delay
	}
	if opts.User != "" {
		cfg.User = opts.User
	}

	token, err := cfg.ReadToken()
	if err != nil {
		return WrapExitError(ExitCommandError, "session", err)
	}

	svc := lookup.NewHTTPService(lookup.HTTPServiceOptions{
		BaseURL: cfg.APIBaseURL,
		Token:   token,
	})
	pacer := lookup.NewPacer(cfg.Delay())
	client := lookup.NewClient(svc, pacer, slog.Default())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := client.Query(ctx, cand, 0)
	if err != nil {
		if ctx.Err() != nil {
			return WrapExitError(ExitFatal, "lookup interrupted", err)
		}
		return WrapExitError(ExitFatal, "fatal session failure", err)
	}

	handle := out.ResolvedUsername
	if handle == "" && cand.Method == resolve.ByUsername {
		handle = cand.Value
	}
	inviteHash := ""
	if cand.Method == resolve.ByInvite {
		inviteHash = cand.Value
	}
	entry := record.StatusEntry{
		Status: out.Status,
		Time:   time.Now(),
		Reason: out.Reason,
		Text:   out.Text,
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if formatter.JSON() {
		return formatter.Success(infoResult{
			Identifier: cand.String(),
			Status:     out.Status,
			ID:         out.ResolvedID,
			Username:   handle,
			Reason:     out.Reason,
			Text:       out.Text,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), string(record.Skeleton(out.ResolvedID, handle, inviteHash, entry)))
	return nil
}

// parseIdentifier maps a user-supplied identifier to a lookup
// candidate: an invite link (full URL, t.me path, or bare +hash), a
// numeric id, or a username with or without the @ or t.me prefix.
func parseIdentifier(s string) (resolve.Candidate, error) {
	s = strings.TrimSpace(s)

	for _, p := range []string{"https://t.me/+", "http://t.me/+", "t.me/+", "+"} {
		if strings.HasPrefix(s, p) {
			hash := strings.TrimPrefix(s, p)
			if hash == "" {
				return resolve.Candidate{}, fmt.Errorf("empty invite hash in %q", s)
			}
			return resolve.Candidate{Method: resolve.ByInvite, Value: hash}, nil
		}
	}

	for _, p := range []string{"https://t.me/", "http://t.me/", "t.me/", "@"} {
		s = strings.TrimPrefix(s, p)
	}
	if s == "" {
		return resolve.Candidate{}, fmt.Errorf("empty identifier")
	}

	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return resolve.Candidate{Method: resolve.ByID, Value: s}, nil
	}
	return resolve.Candidate{Method: resolve.ByUsername, Value: s}, nil
}
