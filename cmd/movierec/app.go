package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/movierec/coldstart"
	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/dataset"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/model"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/store"
)

// app 是命令执行所需的已加载依赖。
type app struct {
	cfg       *config.AppConfig
	tables    *core.Tables
	store     core.Store
	assembler *feature.Assembler
	adapter   *model.Adapter
}

func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if cmd.Flags().Changed("snapshot") {
		cfg.Data.Snapshot, _ = cmd.Flags().GetString("snapshot")
	}
	if cmd.Flags().Changed("store") {
		cfg.Data.Store, _ = cmd.Flags().GetString("store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadApp 加载配置、参考表与（可选的）模型。withModel 为 true 时模型必须配置。
func loadApp(ctx context.Context, cmd *cobra.Command, withModel bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	if cfg.Data.Store != "" {
		if a.store, err = store.Open(ctx, cfg.Data.Store); err != nil {
			return nil, err
		}
		log.Logger().Info("store opened", zap.String("addr", log.RedactURL(cfg.Data.Store)))
	}

	var provider core.StatsProvider
	if cfg.Data.Snapshot != "" {
		provider = dataset.FileProvider{Path: cfg.Data.Snapshot}
	} else {
		provider = &dataset.SnapshotProvider{Store: a.store, Key: cfg.Data.SnapshotKey}
	}
	if a.tables, err = provider.Tables(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.assembler = feature.NewAssembler(a.tables, feature.WithReferenceYear(cfg.Serving.ReferenceYear))

	if withModel {
		if cfg.Model == nil {
			a.close()
			return nil, errors.New("model is not configured")
		}
		scorer, err := model.SpecProvider{Spec: *cfg.Model}.Scorer(ctx)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("load model: %w", err)
		}
		if a.adapter, err = model.NewAdapter(scorer); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) deps() config.Deps {
	return config.Deps{Tables: a.tables, Assembler: a.assembler, Adapter: a.adapter, Store: a.store}
}

// profiles 优先从画像 store 读取，不存在时现场构建。
func (a *app) profiles(ctx context.Context) (*coldstart.Profiles, error) {
	if addr := a.cfg.ColdStart.Store; addr != "" {
		s, err := store.Open(ctx, addr)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		p, err := coldstart.LoadProfiles(ctx, s)
		if err == nil {
			return p, nil
		}
		if !core.IsStoreNotFound(err) {
			return nil, err
		}
		log.Logger().Info("cold-start profiles not found in store, building")
	}
	return a.cfg.ColdStart.Builder().Build(ctx, a.tables)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Logger().Warn("close store", zap.Error(err))
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecommendations(cmd *cobra.Command, recs []core.Recommendation) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(recs)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "movie_id", "title", "year", "genres", "avg_rating", "num_ratings", "score", "source")
	for i, r := range recs {
		score := ""
		if r.Score != nil {
			score = fmt.Sprintf("%.4f", *r.Score)
		}
		year := ""
		if r.ReleaseYear > 0 {
			year = fmt.Sprint(r.ReleaseYear)
		}
		if err := table.Append([]string{
			fmt.Sprint(i + 1),
			fmt.Sprint(r.MovieID),
			r.Title,
			year,
			r.Genres,
			fmt.Sprintf("%.2f", r.AvgRating),
			fmt.Sprint(r.NumRatings),
			score,
			r.Source,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
