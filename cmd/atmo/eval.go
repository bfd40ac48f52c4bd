package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/gravity"
)

func parseNumber(name, arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, arg)
	}
	return v, nil
}

func newEvalCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "eval [--] <altitude_m>",
		Short: "Evaluate the atmosphere at a geometric altitude in metres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			alt, err := parseNumber("altitude", args[0])
			if err != nil {
				return err
			}

			s, err := atmosphere.EvaluateChecked(alt, cfg.Model.FloorM())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			layer := atmosphere.StandardLayers[s.Layer]
			fmt.Fprintf(out, "altitude            %s m (geopotential %s m)\n",
				humanize.FormatFloat("#,###.##", s.AltitudeM), humanize.FormatFloat("#,###.##", s.GeopotentialHeightM))
			fmt.Fprintf(out, "layer               %d (%s)\n", s.Layer, layer.Kind())
			fmt.Fprintf(out, "temperature         %.3f K\n", s.TemperatureK)
			fmt.Fprintf(out, "pressure            %s Pa\n", humanize.FormatFloat("#,###.###", s.PressurePa))
			fmt.Fprintf(out, "density             %.6g kg/m^3\n", s.DensityKgM3)
			fmt.Fprintf(out, "speed of sound      %.3f m/s\n", s.SoundSpeedMs)
			if s.Extrapolated() {
				fmt.Fprintln(out, "note                above the 1976 table ceiling, top layer extrapolated")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the state as JSON")
	return cmd
}

func newGravityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gravity [--] <altitude_m>",
		Short: "Evaluate gravitational acceleration at a geometric altitude in metres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alt, err := parseNumber("altitude", args[0])
			if err != nil {
				return err
			}
			g, err := gravity.GravityChecked(alt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f m/s^2\n", g)
			return nil
		},
	}
}
