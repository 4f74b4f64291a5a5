// Command entitlementd serves the plan catalog and usage counters over the
// entitlement API for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/invoiceaz/planguard/pkg/config"
	"github.com/invoiceaz/planguard/pkg/httpserver"
	"github.com/invoiceaz/planguard/pkg/logger"
	"github.com/invoiceaz/planguard/pkg/plans"
)

type appConfig struct {
	Log  logger.Config
	HTTP httpserver.Config

	CatalogFile string            `env:"PLANS_CATALOG_FILE"`
	DefaultPlan string            `env:"PLANS_DEFAULT_PLAN" envDefault:"free"`
	Assignments map[string]string `env:"PLANS_ASSIGNMENTS" envKeyValSeparator:":"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "entitlementd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Log, logger.WithContextExtractors(plans.LogExtractors()...))
	if err != nil {
		return err
	}

	src, err := catalogSource(cfg.CatalogFile)
	if err != nil {
		return err
	}

	usage := plans.NewMemoryUsage(nil)
	svc, err := plans.NewService(ctx, src, usage.Counters(),
		plans.StaticPlans(cfg.Assignments, cfg.DefaultPlan),
		plans.WithLogger(log),
	)
	if err != nil {
		return err
	}
	if err := svc.VerifyPlan(cfg.DefaultPlan); err != nil {
		return errors.Join(fmt.Errorf("default plan %q", cfg.DefaultPlan), err)
	}
	for user, planID := range cfg.Assignments {
		if err := svc.VerifyPlan(planID); err != nil {
			return errors.Join(fmt.Errorf("plan %q assigned to %s", planID, user), err)
		}
	}

	log.Info("entitlementd: catalog loaded",
		slog.Int("plans", len(svc.Plans())),
		slog.String("default_plan", cfg.DefaultPlan),
	)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, plans.NewHandler(svc, usage, plans.WithHandlerLogger(log)))
}

func catalogSource(path string) (plans.Source, error) {
	if path == "" {
		return plans.NewInMemSource(plans.DefaultCatalog()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(plans.ErrFailedToLoadPlans, err)
	}
	defer f.Close()
	return plans.NewYAMLSource(f)
}
