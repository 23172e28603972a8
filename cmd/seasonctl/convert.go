package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"seasonplan/entities"
	"seasonplan/pkg/costing"
)

func (a *app) convertCmd() *cobra.Command {
	var form string
	cmd := &cobra.Command{
		Use:   "convert RATE UNIT",
		Short: "Convert a rate to gallons or pounds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("rate %q is not a number", args[0])
			}
			if form != entities.FormLiquid && form != entities.FormDry {
				return fmt.Errorf("form must be %s or %s", entities.FormLiquid, entities.FormDry)
			}
			v, unit, err := costing.ToCanonical(rate, args[1], form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%g %s\n", v, unit)
			return nil
		},
	}
	cmd.Flags().StringVar(&form, "form", entities.FormLiquid, "product form: liquid|dry")
	return cmd
}
