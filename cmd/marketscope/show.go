package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/internal/store"
	"github.com/mohammad-safakhou/marketscope/models"
)

func showCMD() *cobra.Command {
	var cfgPath string
	var show = &cobra.Command{
		Use:   "show",
		Short: "Print the most recent result envelope",
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
			b, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
	show.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return show
}
