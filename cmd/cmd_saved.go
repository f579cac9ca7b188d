package cmd

import (
	"errors"
	"fmt"

	"flightcast/services"

	"github.com/spf13/cobra"
)

var saveFlags struct {
	id       string
	stops    int
	duration string
	price    string
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a flight offer to your account on the backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Backend.URL == "" {
			return errors.New("backend.url is not configured")
		}
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		msg, err := a.backend.SaveFlight(ctx, services.SaveFlightRequest{
			FlightID:      saveFlags.id,
			NumStopsValue: saveFlags.stops,
			DurationValue: saveFlags.duration,
			PriceValue:    saveFlags.price,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <flight-id>",
	Short: "Delete a saved flight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Backend.URL == "" {
			return errors.New("backend.url is not configured")
		}
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		msg, err := a.backend.DeleteFlight(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	f := saveCmd.Flags()
	f.StringVar(&saveFlags.id, "id", "", "flight offer id")
	f.IntVar(&saveFlags.stops, "stops", 0, "number of outbound stops")
	f.StringVar(&saveFlags.duration, "duration", "", "ISO 8601 duration, e.g. PT7H5M")
	f.StringVar(&saveFlags.price, "price", "", "grand total")
	_ = saveCmd.MarkFlagRequired("id")
	_ = saveCmd.MarkFlagRequired("price")
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)
}
