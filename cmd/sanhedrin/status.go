package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

var statusState string

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show deliberation status",
	Long: `Show the status of one deliberation, or list all tracked
deliberations when no ID is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusState, "state", "", "Filter the listing by state")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := newAPIClient()

	if len(args) == 1 {
		delib, err := client.status(args[0])
		if err != nil {
			return err
		}
		printDeliberation(delib)
		return nil
	}

	delibs, err := client.list(statusState)
	if err != nil {
		return err
	}
	if len(delibs) == 0 {
		fmt.Println("No deliberations.")
		return nil
	}
	for _, d := range delibs {
		decision := "-"
		if d.Ruling != nil {
			decision = d.Ruling.Decision
		}
		fmt.Printf("%s  %-12s  %-14s  %s\n",
			color.CyanString(d.ID), stateString(d.State), decision, truncatePrompt(d.Task.Prompt))
	}
	return nil
}

func stateString(s models.DeliberationState) string {
	switch s {
	case models.StateCompleted:
		return color.GreenString(string(s))
	case models.StateFailed:
		return color.RedString(string(s))
	case models.StateCancelled:
		return color.YellowString(string(s))
	case models.StateInProgress:
		return color.BlueString(string(s))
	default:
		return string(s)
	}
}

func truncatePrompt(p string) string {
	if len(p) > 60 {
		return p[:57] + "..."
	}
	return p
}

func printDeliberation(d *models.Deliberation) {
	fmt.Printf("Deliberation: %s\n", color.CyanString(d.ID))
	fmt.Printf("State:        %s\n", stateString(d.State))
	fmt.Printf("Prompt:       %s\n", truncatePrompt(d.Task.Prompt))
	if d.Err != "" {
		fmt.Printf("Error:        %s\n", color.RedString(d.Err))
	}
	if d.Ruling == nil {
		return
	}
	r := d.Ruling

	fmt.Printf("\nRuling:       %s", color.New(color.Bold).Sprint(r.Decision))
	if !r.QuorumMet {
		fmt.Printf("  %s", color.YellowString("(quorum not met)"))
	}
	fmt.Println()
	fmt.Printf("Policy:       %s\n", r.Policy)
	fmt.Printf("Panel:        %d jurors, %d verdicts, %d non-responses\n",
		r.PanelSize, len(r.Verdicts), len(r.NonResponses))
	if len(r.Tally) > 0 {
		fmt.Printf("Tally:       ")
		for decision, n := range r.Tally {
			fmt.Printf(" %s=%d", decision, n)
		}
		fmt.Println()
	}
	for _, v := range r.Verdicts {
		line := fmt.Sprintf("  %s: %s", v.Juror, v.Decision)
		if v.Rationale != "" {
			line += " - " + truncatePrompt(v.Rationale)
		}
		fmt.Println(line)
	}
	for _, nr := range r.NonResponses {
		fmt.Printf("  %s: %s\n", nr.Juror, color.YellowString(string(nr.Reason)))
	}
}
