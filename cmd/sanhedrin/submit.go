package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

var (
	submitPanelSize int
	submitPolicy    string
	submitDeadline  time.Duration
	submitDecisions []string
	submitContext   []string
	submitWait      bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <prompt>",
	Short: "Submit a task for deliberation",
	Long: `Submit a task to a running Sanhedrin server.

The prompt is put before a panel of jurors. By default the command prints
the deliberation ID and returns immediately; pass --wait to block until
the panel rules.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().IntVar(&submitPanelSize, "panel-size", 0, "Number of jurors (0 = server default)")
	submitCmd.Flags().StringVar(&submitPolicy, "policy", "", "Consensus policy: majority, unanimous, weighted-score")
	submitCmd.Flags().DurationVar(&submitDeadline, "deadline", 0, "Overall deliberation deadline (0 = server default)")
	submitCmd.Flags().StringSliceVar(&submitDecisions, "decision", nil, "Allowed decision value (repeatable; default approve/reject/abstain)")
	submitCmd.Flags().StringSliceVar(&submitContext, "context", nil, "Context entry as key=value (repeatable)")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "Block until the deliberation finishes and print the ruling")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	task := models.Task{
		Prompt:      args[0],
		PanelSize:   submitPanelSize,
		Policy:      submitPolicy,
		Deadline:    submitDeadline,
		DecisionSet: submitDecisions,
	}
	if len(submitContext) > 0 {
		task.Context = make(map[string]string, len(submitContext))
		for _, kv := range submitContext {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("context entry %q is not key=value", kv)
			}
			task.Context[k] = v
		}
	}

	client := newAPIClient()
	delib, err := client.submit(task)
	if err != nil {
		return err
	}
	fmt.Printf("deliberation %s %s\n", color.CyanString(delib.ID), stateString(delib.State))

	if !submitWait {
		return nil
	}
	for !delib.State.Terminal() {
		time.Sleep(500 * time.Millisecond)
		delib, err = client.status(delib.ID)
		if err != nil {
			return err
		}
	}
	printDeliberation(delib)
	return nil
}
