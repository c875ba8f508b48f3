// Command dockertags prints `docker build` commands for trained tagger
// contexts. It is the standalone form of `tagtrain docker-tags`.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tagtrain/internal/config"
	"tagtrain/internal/dockertag"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string

	cmd := &cobra.Command{
		Use:           "dockertags [tagger/config ...]",
		Short:         "Print docker build commands for trained contexts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configFlag))
			if err != nil {
				return err
			}
			return dockertag.Print(cmd.OutOrStdout(), cfg, args)
		},
	}
	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	return cmd
}
