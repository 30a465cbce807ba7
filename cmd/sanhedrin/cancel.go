package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a running deliberation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delib, err := newAPIClient().cancel(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("deliberation %s %s\n", color.CyanString(delib.ID), stateString(delib.State))
		return nil
	},
}
