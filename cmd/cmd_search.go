package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"flightcast/autocomplete"
	"flightcast/searchform"
	"flightcast/services"

	"github.com/spf13/cobra"
)

var searchFlags struct {
	from       string
	to         string
	depart     string
	ret        string
	passengers int
	pdf        string
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search round trip flights",
	Long: `Resolves --from and --to the way the search form does (an exact airport or
city name, or an IATA code), checks the form and prints the offers.

$ flightcast search --from JFK --to CDG --depart 2030-06-01 --return 2030-06-10 --passengers 2`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		origin, err := a.session.NewController("origin", nil)
		if err != nil {
			return err
		}
		destination, err := a.session.NewController("destination", nil)
		if err != nil {
			return err
		}
		if err := origin.Input(searchFlags.from); err != nil {
			return err
		}
		if err := destination.Input(searchFlags.to); err != nil {
			return err
		}

		form := searchform.Form{
			DepartDate: searchFlags.depart,
			ReturnDate: searchFlags.ret,
			Passengers: strconv.Itoa(searchFlags.passengers),
		}
		return submitAndShow(ctx, a, origin, destination, form, cmd.OutOrStdout(), searchFlags.pdf)
	},
}

// submitAndShow runs the form gate and prints flights, then the stashed forecast.
func submitAndShow(ctx context.Context, a *app, origin, destination *autocomplete.Controller, form searchform.Form, out io.Writer, pdfPath string) error {
	notifier := newTerminalNotifier(os.Stderr)
	gate := searchform.NewGate(origin, destination, a.session.Amadeus, a.weather, notifier, searchform.Options{
		Locale: cfg.Locale,
		Logger: a.log,
	})

	res, err := gate.Submit(ctx, form)
	notifier.Done()
	if err != nil {
		return err
	}

	rate := a.usdRate(ctx)
	if len(res.Flights) == 0 {
		fmt.Fprintln(out, "No flights found.")
	} else {
		fmt.Fprintln(out, renderFlights(res.Flights, rate))
	}

	gate.Wait()
	dest := res.Search.Destination
	forecast, ok := a.weather.Cached(ctx, dest.Latitude, dest.Longitude, res.Search.DepartDate, res.Search.ReturnDate)
	if ok {
		fmt.Fprintf(out, "\nWeather at %s\n%s\n", dest.Name, renderForecast(forecast))
	}

	if pdfPath == "" {
		return nil
	}
	data, err := services.GenerateResultsPDF(services.ReportData{
		Search:   res.Search,
		Flights:  res.Flights,
		USDRate:  rate,
		Forecast: forecast,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pdfPath, err)
	}
	a.log.Info("results written", "path", pdfPath)
	return nil
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.from, "from", "", "departure airport or city")
	f.StringVar(&searchFlags.to, "to", "", "arrival airport or city")
	f.StringVar(&searchFlags.depart, "depart", "", "departure date, yyyy-mm-dd")
	f.StringVar(&searchFlags.ret, "return", "", "return date, yyyy-mm-dd")
	f.IntVar(&searchFlags.passengers, "passengers", 1, "number of passengers (1-9)")
	f.StringVar(&searchFlags.pdf, "pdf", "", "also write the results to this PDF file")
	_ = searchCmd.MarkFlagRequired("from")
	_ = searchCmd.MarkFlagRequired("to")
	_ = searchCmd.MarkFlagRequired("depart")
	_ = searchCmd.MarkFlagRequired("return")
	rootCmd.AddCommand(searchCmd)
}
