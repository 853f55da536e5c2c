package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsfabric/premise/pkg/commands"
)

func main() {
	root := &cobra.Command{
		Use:   "premise",
		Short: "Facilities console toolbox",
	}
	root.AddCommand(
		commands.NewServeCommand(),
		commands.NewMigrateCommand(),
		commands.NewSeedCommand(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
