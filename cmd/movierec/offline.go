package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/movierec/coldstart"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/eval"
	"github.com/rushteam/movierec/pkg/log"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/store"
)

func init() {
	evaluateCommand.Flags().Int("k", eval.DefaultK, "cutoff of ranking metrics")
	evaluateCommand.Flags().Float64("test-fraction", eval.DefaultTestFraction, "fraction of users held out")
	evaluateCommand.Flags().Uint64("seed", eval.DefaultSeed, "random seed of the user split")
	rootCommand.AddCommand(evaluateCommand)

	candidatesCommand.Flags().StringP("output", "o", "", "write candidates as JSON lines to file (default stdout summary)")
	candidatesCommand.Flags().Int("workers", 0, "number of concurrent partitions (default GOMAXPROCS)")
	rootCommand.AddCommand(candidatesCommand)

	buildProfilesCommand.Flags().String("target", "", "store address to save profiles (default coldstart.store)")
	rootCommand.AddCommand(buildProfilesCommand)
}

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the configured model on held-out users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer a.close()

		k, _ := cmd.Flags().GetInt("k")
		fraction, _ := cmd.Flags().GetFloat64("test-fraction")
		seed, _ := cmd.Flags().GetUint64("seed")
		_, test := eval.SplitByUsers(a.tables.Ratings(), fraction, seed)
		rep, err := eval.EvaluateModel(ctx, a.assembler, a.adapter, test, k)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(rep)
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("metric", "value")
		rows := [][]string{
			{fmt.Sprintf("ndcg@%d", rep.K), fmt.Sprintf("%.4f", rep.NDCG)},
			{fmt.Sprintf("precision@%d", rep.K), fmt.Sprintf("%.4f", rep.Precision)},
			{fmt.Sprintf("recall@%d", rep.K), fmt.Sprintf("%.4f", rep.Recall)},
			{"users", fmt.Sprint(rep.Users)},
			{"skipped", fmt.Sprint(rep.Skipped)},
		}
		if err := table.Bulk(rows); err != nil {
			return err
		}
		return table.Render()
	},
}

var candidatesCommand = &cobra.Command{
	Use:   "candidates",
	Short: "Materialize candidate sets for all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		workers, _ := cmd.Flags().GetInt("workers")
		cands, err := recall.Materialize(ctx, a.tables, recall.MaterializeOptions{
			PopularTopN:  a.cfg.Recall.PopularTopN,
			GenreTopN:    a.cfg.Recall.GenreTopN,
			PopularityBy: recall.PopularityBy(a.cfg.Recall.PopularityBy),
			Workers:      workers,
		})
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := writeCandidates(path, cands); err != nil {
				return err
			}
			log.Logger().Info("candidates written", zap.String("path", path), zap.Int("rows", len(cands)))
			return nil
		}
		bySource := lo.CountValuesBy(cands, func(c core.Candidate) string { return c.Source })
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("source", "candidates")
		for _, src := range []string{recall.SourcePopularity, recall.SourceGenre} {
			if err := table.Append([]string{src, fmt.Sprint(bySource[src])}); err != nil {
				return err
			}
		}
		if err := table.Append([]string{"users", fmt.Sprint(len(lo.UniqBy(cands, func(c core.Candidate) int64 { return c.UserID })))}); err != nil {
			return err
		}
		return table.Render()
	},
}

func writeCandidates(path string, cands []core.Candidate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, c := range cands {
		if err := enc.Encode(c); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var buildProfilesCommand = &cobra.Command{
	Use:   "build-profiles",
	Short: "Build cold-start profiles and save them to a store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			target = a.cfg.ColdStart.Store
		}
		if target == "" {
			return fmt.Errorf("no target store: set --target or coldstart.store")
		}
		profiles, err := a.cfg.ColdStart.Builder().Build(ctx, a.tables)
		if err != nil {
			return err
		}
		s, err := store.Open(ctx, target)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := coldstart.SaveProfiles(ctx, s, profiles); err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("region", "users", "movies")
		for _, r := range profiles.Regional {
			if err := table.Append([]string{string(r.Region), fmt.Sprint(r.NUsers), fmt.Sprint(len(r.MovieIDs))}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		log.Logger().Info("cold-start profiles saved",
			zap.String("store", log.RedactURL(target)),
			zap.Int("demographic", len(profiles.Demographic)))
		return nil
	},
}
