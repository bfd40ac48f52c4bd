package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yegors/stdatmo/internal/airdata"
	"github.com/yegors/stdatmo/internal/physics"
)

func newAirDataCmd() *cobra.Command {
	var (
		altM, altFt, tasMs, tasKt float64
		asJSON                    bool
	)

	cmd := &cobra.Command{
		Use:   "airdata",
		Short: "Compute Mach, temperatures, dynamic pressure and CAS for a flight condition",
		Example: `  atmo airdata --altitude-ft 35000 --tas-kt 460
  atmo airdata --altitude-m 3000 --tas-ms 120 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			alt := altM
			if cmd.Flags().Changed("altitude-ft") {
				alt = altFt * physics.FeetToMeters
			}
			tas := tasMs
			if cmd.Flags().Changed("tas-kt") {
				tas = tasKt * physics.KnotsToMs
			}

			r, err := airdata.Compute(alt, tas, cfg.Model.FloorM())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			fmt.Fprintf(out, "altitude            %s m (%s ft)\n",
				humanize.FormatFloat("#,###.#", r.AltitudeM), humanize.FormatFloat("#,###.", r.AltitudeFt))
			fmt.Fprintf(out, "true airspeed       %.2f m/s (%.1f kt)\n", r.TASMs, r.TASKt)
			fmt.Fprintf(out, "mach                %.4f\n", r.Mach)
			fmt.Fprintf(out, "static temperature  %.2f K (%.2f C)\n", r.StaticTempK, r.StaticTempC)
			fmt.Fprintf(out, "total temperature   %.2f K (%.2f C)\n", r.TotalTempK, r.TotalTempC)
			fmt.Fprintf(out, "dynamic pressure    %s Pa\n", humanize.FormatFloat("#,###.##", r.DynamicPressurePa))
			fmt.Fprintf(out, "calibrated airspeed %.2f m/s (%.1f kt)\n", r.CASMs, r.CASKt)
			if r.Supersonic {
				fmt.Fprintln(out, "note                supersonic, CAS uses the subsonic relation")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&altM, "altitude-m", 0, "Geometric altitude in metres")
	cmd.Flags().Float64Var(&altFt, "altitude-ft", 0, "Geometric altitude in feet")
	cmd.Flags().Float64Var(&tasMs, "tas-ms", 0, "True airspeed in m/s")
	cmd.Flags().Float64Var(&tasKt, "tas-kt", 0, "True airspeed in knots")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("altitude-m", "altitude-ft")
	cmd.MarkFlagsOneRequired("altitude-m", "altitude-ft")
	cmd.MarkFlagsMutuallyExclusive("tas-ms", "tas-kt")
	cmd.MarkFlagsOneRequired("tas-ms", "tas-kt")
	return cmd
}

func newInverseAltitudeCmd(use, short, unit string, lookup func(float64) (float64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <" + unit + ">",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseNumber(unit, args[0])
			if err != nil {
				return err
			}
			alt, err := lookup(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f m (%s ft)\n", alt, humanize.FormatFloat("#,###.", alt*physics.MetersToFeet))
			return nil
		},
	}
}

func newPressureAltitudeCmd() *cobra.Command {
	return newInverseAltitudeCmd("pressure-altitude", "Find the standard altitude with a given static pressure", "pressure_pa", airdata.PressureAltitude)
}

func newDensityAltitudeCmd() *cobra.Command {
	return newInverseAltitudeCmd("density-altitude", "Find the standard altitude with a given air density", "density_kg_m3", airdata.DensityAltitude)
}
