// Package cmd implements the CLI commands for gamedealer.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "gamedealer",
		Short: "Surface the best game deals across stores",
		Long: "gamedealer watches IsThereAnyDeal for discounted game listings,\n" +
			"matches them against a curated priority catalog, filters out\n" +
			"asset-flip shovelware, and ranks what is left by discount,\n" +
			"priority, and community popularity.",
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dealsCommand())
	rootCmd.AddCommand(matchCommand())
	rootCmd.AddCommand(catalogCommand())
	rootCmd.AddCommand(versionCommand())
}

func initConfig() {
	viper.SetEnvPrefix("GAMEDEALER")
	viper.AutomaticEnv()
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
