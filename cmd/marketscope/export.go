package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/export"
	"github.com/mohammad-safakhou/marketscope/internal/store"
	"github.com/mohammad-safakhou/marketscope/models"
)

func exportCMD() *cobra.Command {
	var cfgPath string
	var outDir string
	var cmd = &cobra.Command{
		Use:   "export",
		Short: "Write the most recent result envelope to analysis.json and analysis.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			sink, err := store.NewFileStore(cfg.Storage.File.DataDir)
			if err != nil {
				return err
			}
			env, err := sink.Load()
			if err != nil {
				if errors.Is(err, models.ErrNoSavedResult) {
					fmt.Println("no saved results yet, run an analysis first")
					return nil
				}
				return err
			}

			jsonPath := filepath.Join(outDir, "analysis.json")
			jf, err := os.Create(jsonPath)
			if err != nil {
				return err
			}
			if err := export.EnvelopeJSON(jf, *env); err != nil {
				jf.Close()
				return err
			}
			if err := jf.Close(); err != nil {
				return err
			}

			// Saved envelopes do not record which analysis kind produced
			// them; column order is inferred from the record shape.
			csvPath := filepath.Join(outDir, "analysis.csv")
			cf, err := os.Create(csvPath)
			if err != nil {
				return err
			}
			if err := export.EnvelopeCSV(cf, models.KindGeneral, *env); err != nil {
				cf.Close()
				return err
			}
			if err := cf.Close(); err != nil {
				return err
			}

			fmt.Printf("wrote %s and %s\n", jsonPath, csvPath)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	cmd.PersistentFlags().StringVarP(&outDir, "dir", "d", ".", "directory to write exported files into")

	return cmd
}
