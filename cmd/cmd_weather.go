package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var weatherFlags struct {
	lat, long  float64
	start, end string
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the daily forecast for a place, cached after the first lookup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		forecast, err := a.weather.Forecast(ctx, weatherFlags.lat, weatherFlags.long, weatherFlags.start, weatherFlags.end)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderForecast(forecast))
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Show the cached EUR to USD exchange rate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		rate, err := a.rates.USDRate(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "1 EUR = %.4f USD\n", rate)
		return nil
	},
}

func init() {
	f := weatherCmd.Flags()
	f.Float64Var(&weatherFlags.lat, "lat", 0, "latitude")
	f.Float64Var(&weatherFlags.long, "long", 0, "longitude")
	f.StringVar(&weatherFlags.start, "start", "", "first day, yyyy-mm-dd")
	f.StringVar(&weatherFlags.end, "end", "", "last day, yyyy-mm-dd")
	_ = weatherCmd.MarkFlagRequired("lat")
	_ = weatherCmd.MarkFlagRequired("long")
	_ = weatherCmd.MarkFlagRequired("start")
	_ = weatherCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(rateCmd)
}
