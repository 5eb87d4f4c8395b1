package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omnai-sh/omnai/internal/registry"
)

func init() {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List or search known model configurations",
		Run:   runModels,
	}

	cmd.Flags().StringP("engine", "e", "", "Only models for this engine")
	cmd.Flags().StringP("search", "s", "", "Substring search over model ids")
	cmd.Flags().Int("limit", 10, "Maximum search results")
	cmd.Flags().StringSlice("cost", nil, "Filter by cost: free, cheap, medium, expensive")
	cmd.Flags().StringSlice("speed", nil, "Filter by speed: very-fast, fast, medium, slow, very-slow")
	cmd.Flags().StringSlice("quality", nil, "Filter by quality: excellent, good, fair, basic")
	cmd.Flags().StringSlice("best-for", nil, "Filter by use case tags")
	cmd.Flags().Bool("free-tier", false, "Only models with a free tier")
	cmd.Flags().Bool("json", false, "Emit JSON instead of a table")

	RootCmd.AddCommand(cmd)
}

func runModels(cmd *cobra.Command, args []string) {
	engine, _ := cmd.Flags().GetString("engine")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	cost, _ := cmd.Flags().GetStringSlice("cost")
	speed, _ := cmd.Flags().GetStringSlice("speed")
	quality, _ := cmd.Flags().GetStringSlice("quality")
	bestFor, _ := cmd.Flags().GetStringSlice("best-for")
	asJSON, _ := cmd.Flags().GetBool("json")

	var configs []registry.ModelConfig
	switch {
	case search != "":
		configs = registry.FindSimilar(search, engine, limit)
	case len(cost) > 0 || len(speed) > 0 || len(quality) > 0 || len(bestFor) > 0 || cmd.Flags().Changed("free-tier"):
		crit := registry.Criteria{BestFor: bestFor}
		for _, v := range cost {
			crit.Cost = append(crit.Cost, registry.CostLevel(v))
		}
		for _, v := range speed {
			crit.Speed = append(crit.Speed, registry.SpeedLevel(v))
		}
		for _, v := range quality {
			crit.Quality = append(crit.Quality, registry.QualityLevel(v))
		}
		if engine != "" {
			crit.Engine = []string{engine}
		}
		if cmd.Flags().Changed("free-tier") {
			free, _ := cmd.Flags().GetBool("free-tier")
			crit.FreeTier = &free
		}
		configs = registry.FindConfigs(crit)
	default:
		configs = registry.ListConfigs(engine)
	}

	if asJSON {
		b, err := json.MarshalIndent(configs, "", "  ")
		if err != nil {
			exitErr("encode models", err)
		}
		fmt.Println(string(b))
		return
	}
	for _, c := range configs {
		fmt.Printf("  %-34s %-9s cost=%-10s speed=%-10s quality=%-10s %s\n",
			c.ID, c.Engine, c.Cost, c.Speed, c.Quality, strings.Join(c.BestFor, ","))
	}
	if len(configs) == 0 {
		fmt.Println("  no matching models")
	}
}
