package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/profile"
)

func newLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "Print the 1976 standard atmosphere layer table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "k\tbase h (m)\tlapse (K/km)\tT (K)\tP (Pa)\tkind\t")
			for k, l := range atmosphere.StandardLayers {
				fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.3f\t%s\t%s\t\n",
					k,
					humanize.FormatFloat("#,###.", l.BaseHeightM),
					l.LapseRateKPerM*1000,
					l.BaseTemperatureK,
					humanize.FormatFloat("#,###.####", l.BasePressurePa),
					l.Kind())
			}
			return tw.Flush()
		},
	}
}

func newProfileCmd() *cobra.Command {
	var (
		from, to, step float64
		format         string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Sweep a range of altitudes and print the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "table", "csv", "json":
			default:
				return fmt.Errorf("unknown format %q (want table, csv or json)", format)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("from") {
				from = cfg.Profile.FromM
			}
			if !cmd.Flags().Changed("to") {
				to = cfg.Profile.ToM
			}
			if !cmd.Flags().Changed("step") {
				step = cfg.Profile.StepM
			}

			samples, err := profile.Sweep(cmd.Context(), from, to, step, cfg.Limits())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "csv":
				return profile.WriteCSV(out, samples)
			case "json":
				summary, err := profile.Summarize(samples)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"summary": summary, "samples": samples})
			default:
				return writeTable(out, samples)
			}
		},
	}

	cmd.Flags().Float64Var(&from, "from", 0, "First geometric altitude in metres (default from config)")
	cmd.Flags().Float64Var(&to, "to", 0, "Last geometric altitude in metres (default from config)")
	cmd.Flags().Float64Var(&step, "step", 0, "Altitude step in metres (default from config)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, csv or json")
	return cmd
}

func writeTable(w io.Writer, samples []profile.Sample) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "alt (m)\tlayer\tT (K)\tP (Pa)\trho (kg/m^3)\ta (m/s)\tg (m/s^2)\t")
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.6g\t%.6g\t%.2f\t%.5f\t\n",
			humanize.FormatFloat("#,###.#", s.AltitudeM),
			s.Layer,
			s.TemperatureK,
			s.PressurePa,
			s.DensityKgM3,
			s.SoundSpeedMs,
			s.GravityMs2)
	}
	return tw.Flush()
}
