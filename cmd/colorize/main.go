// Command colorize writes part-colored copies of the dataset meshes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"partobjaverse-viewer/internal/app"
	"partobjaverse-viewer/internal/config"
	"partobjaverse-viewer/internal/core/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	flags := pflag.NewFlagSet("colorize", pflag.ExitOnError)
	flags.Int("workers", 0, "parallel workers (default: number of CPUs)")
	flags.Bool("force", false, "rewrite colored meshes that already exist")
	category := flags.String("category", "", "only colorize samples of this category")
	uids := flags.StringSlice("uid", nil, "only colorize these sample uids (repeatable)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	v := viper.New()
	if err := bindFlags(v, flags); err != nil {
		log.Fatalf("bind flags: %v", err)
	}

	cfg, err := config.LoadWith(v)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	app.InitLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	if err := a.DatasetSvc.EnsureMeshes(ctx); err != nil {
		log.Fatalf("prepare meshes: %v", err)
	}
	if err := a.DatasetSvc.EnsureSemanticGT(ctx); err != nil {
		log.Fatalf("prepare semantic labels: %v", err)
	}
	ls, err := a.DatasetSvc.LoadLabelSet(ctx)
	if err != nil {
		log.Fatalf("load label set: %v", err)
	}

	samples, err := selectSamples(ls, *category, *uids)
	if err != nil {
		log.Fatalf("select samples: %v", err)
	}

	summary, err := a.ColorizeSvc.ColorizeAll(ctx, samples, cfg.Colorize.Force)
	if err != nil {
		log.Fatalf("colorize: %v", err)
	}
	if summary.Failed > 0 {
		a.Close()
		log.Fatalf("%d of %d meshes failed to colorize", summary.Failed, summary.Total)
	}
}

// selectSamples narrows the label set by category and uid. With neither
// filter every sample is returned.
func selectSamples(ls *domain.LabelSet, category string, uids []string) ([]domain.Sample, error) {
	if len(uids) > 0 {
		out := make([]domain.Sample, 0, len(uids))
		for _, uid := range uids {
			s, err := ls.Sample(uid)
			if err != nil {
				return nil, err
			}
			if category != "" && s.Category != category {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	}

	if category != "" {
		c, err := ls.Category(category)
		if err != nil {
			return nil, err
		}
		return c.Samples, nil
	}
	return ls.Samples(), nil
}

// bindFlags lets --workers and --force override their environment settings.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"COLORIZE_WORKERS": "workers",
		"COLORIZE_FORCE":   "force",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
