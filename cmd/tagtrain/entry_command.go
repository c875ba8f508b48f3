package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagtrain/internal/entry"
)

func newEntryCommand(ctx *commandContext) *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "entry <train> <dev> <config> <output>",
		Short: "Run the pie trainer with positional trainer paths",
		Long: `Translate the four positional trainer paths into pie's PIE_* settings and run
pie's training script on the config file. The settings are passed to the
trainer process only. The trainer's exit status becomes this command's.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(device) == "" {
				device = cfg.Pie.Device
			}
			settings, err := entry.NewSettings(args[0], args[1], args[3], device)
			if err != nil {
				return err
			}
			logger, err := ctx.logger("")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runner := entry.NewRunner(cfg, cmd.OutOrStdout(), logger)
			runner.Exec = trainerExecutor()
			code, err := runner.Run(cmd.Context(), settings, args[2])
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitCodeError{code: code, msg: fmt.Sprintf("pie exited with status %d", code)}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Override pie.device (e.g. cpu, cuda:1)")
	return cmd
}
