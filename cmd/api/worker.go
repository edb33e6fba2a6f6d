package main

import (
	"github.com/spf13/cobra"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Drain the notification outbox",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.load()
			if err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			w := a.worker()
			if once {
				n, err := w.RunOnce(cmd.Context())
				cmd.Printf("attempted %d notifications\n", n)
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")
	return cmd
}
