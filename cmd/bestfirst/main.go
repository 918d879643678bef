package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/bestfirst/internal/config"
)

func main() {
	var configFile string
	root := &cobra.Command{
		Use:           "bestfirst",
		Short:         "best-first path, range and plan searches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "bestfirst.yaml", "config file")

	loadConfig := func() (config.Config, error) { return config.Load(configFile) }
	root.AddCommand(
		PathCmd(loadConfig),
		RangeCmd(loadConfig),
		PlanCmd(loadConfig),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "**err**: %v\n", err)
		os.Exit(1)
	}
}
