package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phl311.app/bot/internal/carto"
	"phl311.app/bot/internal/service"
)

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <text>",
		Short:   "Print the reply the bot would give to a message",
		Example: `  bot lookup "@phl311bot any news on 15432198?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Summary.Location()
			if err != nil {
				return err
			}

			svc := service.NewLookupService(carto.New(a.cfg.Carto), loc)
			response, ok, err := svc.Preview(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no reply: no single case matches this message")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), response)
			return nil
		},
	}
}
