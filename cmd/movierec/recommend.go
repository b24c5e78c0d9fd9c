package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/movierec/coldstart"
	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/recommend"
)

func init() {
	recommendCommand.Flags().Int64P("user", "u", 0, "user id")
	recommendCommand.Flags().IntP("top-k", "k", 0, "number of movies to return (default from config)")
	_ = recommendCommand.MarkFlagRequired("user")
	rootCommand.AddCommand(recommendCommand)

	coldStartCommand.Flags().String("gender", "", "gender, M or F")
	coldStartCommand.Flags().Int("age", 0, "age bucket")
	coldStartCommand.Flags().Int("occupation", 0, "occupation code")
	coldStartCommand.Flags().String("zip", "", "zip code (optional)")
	coldStartCommand.Flags().IntP("top-k", "k", 0, "number of movies to return (default from config)")
	_ = coldStartCommand.MarkFlagRequired("gender")
	rootCommand.AddCommand(coldStartCommand)
}

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend movies for a known user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer a.close()

		p, err := config.DefaultPipeline(a.cfg, a.deps())
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetInt64("user")
		topK, _ := cmd.Flags().GetInt("top-k")
		if topK <= 0 {
			topK = a.cfg.Serving.TopK
		}
		recs, err := recommend.NewService(a.tables, p, nil).Recommend(ctx, userID, topK)
		if err != nil {
			return err
		}
		return printRecommendations(cmd, recs)
	},
}

var coldStartCommand = &cobra.Command{
	Use:   "coldstart",
	Short: "Recommend movies for a new user from demographics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		profiles, err := a.profiles(ctx)
		if err != nil {
			return err
		}
		var d core.Demographics
		d.Gender, _ = cmd.Flags().GetString("gender")
		d.Age, _ = cmd.Flags().GetInt("age")
		d.Occupation, _ = cmd.Flags().GetInt("occupation")
		d.ZipCode, _ = cmd.Flags().GetString("zip")
		topK, _ := cmd.Flags().GetInt("top-k")
		if topK <= 0 {
			topK = a.cfg.Serving.TopK
		}
		svc := recommend.NewService(a.tables, nil, coldstart.NewHandler(profiles))
		recs, err := svc.RecommendColdStart(ctx, d, topK)
		if err != nil {
			return err
		}
		return printRecommendations(cmd, recs)
	},
}
