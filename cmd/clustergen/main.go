package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/cenkalti/clustergen"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "clustergen",
		Short:         "Turn video cluster analysis into generation specs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := clustergen.LoadConfig(v); err != nil {
				return err
			}
			logger, err := clustergen.NewLogger(clustergen.Config.Debug)
			if err != nil {
				return err
			}
			clustergen.SetLogger(logger)
			return nil
		},
	}
	if err := clustergen.RegisterFlags(rootCmd, v); err != nil {
		log.Fatal(err)
	}

	// Add all commands from the clustergen package
	rootCmd.AddCommand(clustergen.LoadTablesCmd)
	rootCmd.AddCommand(clustergen.ClustersCmd)
	rootCmd.AddCommand(clustergen.SuggestCmd)
	rootCmd.AddCommand(clustergen.GenerateSpecsCmd)
	rootCmd.AddCommand(clustergen.SchemaCmd)
	rootCmd.AddCommand(clustergen.GenerateReportCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: generate -> schema -> report",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("Running full pipeline...")
		if err := clustergen.GenerateSpecsCmd.RunE(cmd, args); err != nil {
			return err
		}
		if err := clustergen.SchemaCmd.RunE(cmd, args); err != nil {
			return err
		}
		if err := clustergen.GenerateReportCmd.RunE(cmd, args); err != nil {
			return err
		}
		log.Println("Pipeline complete.")
		return nil
	},
}

func init() {
	// run shares the generate flags
	runCmd.Flags().AddFlagSet(clustergen.GenerateSpecsCmd.Flags())
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove exported specs, schema, snapshot and report",
	Run: func(cmd *cobra.Command, args []string) {
		dir := clustergen.Config.OutputDir
		files := []string{
			filepath.Join(dir, clustergen.ExportFileName),
			filepath.Join(dir, clustergen.SchemaFileName),
			filepath.Join(dir, clustergen.ReportMarkdownFile),
			filepath.Join(dir, clustergen.ReportHTMLFile),
		}
		if clustergen.Config.ExportDB != "" {
			files = append(files, clustergen.Config.ExportDB)
		}
		for _, file := range files {
			if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Printf("Failed to remove %s: %v", file, err)
			}
		}
		log.Println("Cleaned generated specs, schema and report.")
	},
}
