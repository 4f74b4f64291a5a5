package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/invoiceaz/planguard/pkg/config"
	"github.com/invoiceaz/planguard/pkg/entitlement"
	"github.com/invoiceaz/planguard/pkg/gate"
	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/planclient"
	"github.com/invoiceaz/planguard/pkg/planstatus"
	"github.com/invoiceaz/planguard/pkg/session"
)

var errDenied = errors.New("denied by plan")

type options struct {
	baseURL  string
	token    string
	userID   string
	email    string
	business string
	lang     string
	asJSON   bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "plancheck",
		Short:         "Inspect plan limits and feature locks of an account",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "entitlement API base URL (default $ENTITLEMENT_BASE_URL)")
	flags.StringVar(&opts.token, "token", "", "bearer token of the account")
	flags.StringVar(&opts.userID, "user", "", "user id used for cache keys (defaults to the token)")
	flags.StringVar(&opts.email, "email", "", "account email, used to detect the demo account")
	flags.StringVar(&opts.business, "business", "", "active business id")
	flags.StringVar(&opts.lang, "lang", "az", "language of display names and prompts")
	flags.BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	_ = root.MarkPersistentFlagRequired("token")

	root.AddCommand(newStatusCmd(opts), newCanCmd(opts))
	return root
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the plan, every quantity decision and every feature lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			snap, err := env.provider.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), opts, env.eval, snap)
		},
	}
}

func newCanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "can <resource|feature>",
		Short: "Check whether one more resource may be created or a feature is unlocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args[0])
			if err != nil {
				return err
			}

			env, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			if _, err := env.provider.Load(cmd.Context()); err != nil {
				return err
			}

			flow := gate.New(env.eval, env.provider, discardPresenter{},
				gate.WithLanguage(opts.tag()),
				gate.WithLogger(env.log),
			)
			prompt, ok := flow.Precheck(cmd.Context(), target)
			out := cmd.OutOrStdout()
			if ok {
				fmt.Fprintf(out, "allowed: %s\n", target)
				return nil
			}
			fmt.Fprintf(out, "denied: %s\n%s\n%s\n", target, prompt.Title, prompt.Message)
			return errDenied
		},
	}
}

func parseTarget(arg string) (gate.Target, error) {
	if res := entitlement.Resource(arg); res.Valid() {
		return gate.ForResource(res), nil
	}
	if f := entitlement.Feature(arg); f.Valid() {
		return gate.ForFeature(f), nil
	}
	return gate.Target{}, fmt.Errorf("unknown resource or feature %q", arg)
}

type env struct {
	eval     entitlement.Evaluator
	provider *planstatus.Provider
	log      *slog.Logger
}

func (e *env) close() { e.provider.Close() }

func (o *options) tag() language.Tag {
	tag, err := language.Parse(o.lang)
	if err != nil {
		return language.Azerbaijani
	}
	return tag
}

// connect builds the client stack: config, logger, session, client and provider.
func (o *options) connect(cmd *cobra.Command) (*env, error) {
	var clientCfg planclient.Config
	if err := config.Load(&clientCfg); err != nil {
		return nil, err
	}
	var statusCfg planstatus.Config
	if err := config.Load(&statusCfg); err != nil {
		return nil, err
	}
	var evalCfg entitlement.Config
	if err := config.Load(&evalCfg); err != nil {
		return nil, err
	}
	if o.baseURL != "" {
		clientCfg.BaseURL = o.baseURL
	}

	log := logger.Nop()
	if o.verbose {
		log = logger.New(logger.WithOutput(cmd.ErrOrStderr()), logger.WithFormat(logger.FormatText), logger.WithLevel(slog.LevelDebug))
	}

	client, err := planclient.NewFromConfig(clientCfg, planclient.WithLogger(log))
	if err != nil {
		return nil, err
	}

	userID := o.userID
	if userID == "" {
		userID = o.token
	}
	id := entitlement.Identity{UserID: userID, Email: o.email}
	sess := session.New(session.WithLogger(log))
	if err := sess.Login(id, o.token); err != nil {
		return nil, err
	}
	if o.business != "" {
		if err := sess.SwitchBusiness(o.business); err != nil {
			return nil, err
		}
	}

	provider := planstatus.New(sess, client, append(statusCfg.Options(), planstatus.WithLogger(log))...)
	return &env{
		eval:     entitlement.NewFromConfig(evalCfg).For(id),
		provider: provider,
		log:      log,
	}, nil
}

type resourceRow struct {
	Resource  entitlement.Resource `json:"resource"`
	Name      string               `json:"name"`
	Allowed   bool                 `json:"allowed"`
	Limit     entitlement.Limit    `json:"limit"`
	Current   int64                `json:"current"`
	Remaining *int64               `json:"remaining,omitempty"`
}

type featureRow struct {
	Feature entitlement.Feature `json:"feature"`
	Name    string              `json:"name"`
	Locked  bool                `json:"locked"`
}

type statusReport struct {
	Plan      entitlement.PlanLabel `json:"plan"`
	Pro       bool                  `json:"pro"`
	Demo      bool                  `json:"demo"`
	Business  string                `json:"business_id,omitempty"`
	Resources []resourceRow         `json:"resources"`
	Features  []featureRow          `json:"features"`
}

func buildReport(tag language.Tag, eval entitlement.Evaluator, snap *entitlement.Snapshot) statusReport {
	r := statusReport{
		Plan: eval.ResolvePlanLabel(snap),
		Pro:  eval.IsPro(snap),
		Demo: eval.IsDemo(),
	}
	if snap != nil {
		r.Business = snap.BusinessID
	}
	for _, res := range entitlement.Resources() {
		d := eval.CheckQuantity(snap, res)
		row := resourceRow{Resource: res, Name: res.DisplayName(tag), Allowed: d.Allowed, Limit: d.Limit, Current: d.Current}
		if rem, ok := d.Remaining(); ok {
			row.Remaining = &rem
		}
		r.Resources = append(r.Resources, row)
	}
	for _, f := range entitlement.Features() {
		r.Features = append(r.Features, featureRow{Feature: f, Name: f.DisplayName(tag), Locked: eval.IsFeatureLocked(snap, f)})
	}
	return r
}

func printStatus(w io.Writer, opts *options, eval entitlement.Evaluator, snap *entitlement.Snapshot) error {
	report := buildReport(opts.tag(), eval, snap)
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "plan: %s (pro=%t demo=%t)\n\n", report.Plan, report.Pro, report.Demo)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tUSED\tLIMIT\tALLOWED")
	for _, row := range report.Resources {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%t\n", row.Name, row.Current, row.Limit, row.Allowed)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FEATURE\tLOCKED")
	for _, row := range report.Features {
		fmt.Fprintf(tw, "%s\t%t\n", row.Name, row.Locked)
	}
	return tw.Flush()
}

type discardPresenter struct{}

func (discardPresenter) ShowUpgradePrompt(context.Context, gate.UpgradePrompt) {}
func (discardPresenter) ShowError(context.Context, string)                     {}
func (discardPresenter) CloseDialog(context.Context)                           {}
