package main

import (
	"github.com/spf13/cobra"

	"tagtrain/internal/dockertag"
)

func newDockerTagsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "docker-tags [tagger/config ...]",
		Short: "Print docker build commands for trained contexts",
		Long: `Print one "docker build" command per docker context. Without arguments every
tagger/config folder under the docker output folder is listed. Nothing is executed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return dockertag.Print(cmd.OutOrStdout(), cfg, args)
		},
	}
}
