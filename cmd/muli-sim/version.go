package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the muli-sim build version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(buildVersion)
		return nil
	},
}
