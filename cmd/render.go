package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"flightcast/models"
	"flightcast/services"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#123456", Dark: "#9ccfd8"}).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	flashStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderCandidates(candidates []models.LocationCandidate) string {
	t := newTable("#", "Name", "IATA", "Lat", "Long")
	for i, c := range candidates {
		t.Row(strconv.Itoa(i+1), c.Name, c.IATACode,
			strconv.FormatFloat(c.Latitude, 'f', 4, 64),
			strconv.FormatFloat(c.Longitude, 'f', 4, 64))
	}
	return t.String()
}

func renderFlights(flights []models.Flight, usdRate float64) string {
	t := newTable("ID", "Airline", "Flight", "Outbound", "Duration", "Stops", "Return", "Price")
	for _, f := range flights {
		t.Row(f.ID, f.Airline, f.FlightNumber,
			services.FormatFlightLeg(f.DepartureTime, f.ArrivalTime),
			f.Duration,
			strconv.Itoa(f.Stops),
			services.FormatFlightLeg(f.ReturnDepartureTime, f.ReturnArrivalTime),
			services.FormatPrice(f.Price, f.Currency, usdRate))
	}
	return t.String()
}

func renderForecast(forecast *models.Forecast) string {
	t := newTable("Date", "Temp", "Min", "Max", "Conditions")
	for _, d := range forecast.Days {
		t.Row(d.Date,
			fmt.Sprintf("%.0f°F", d.Temp),
			fmt.Sprintf("%.0f°F", d.TempMin),
			fmt.Sprintf("%.0f°F", d.TempMax),
			d.Conditions)
	}
	return t.String()
}

// ─── Notifier ─────────────────────────────────────────────────────────────────

// terminalNotifier prints form banners and runs a spinner while a search is in
// flight. The spinner only shows when out is a terminal.
type terminalNotifier struct {
	out io.Writer

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func newTerminalNotifier(out io.Writer) *terminalNotifier {
	return &terminalNotifier{out: out}
}

func (n *terminalNotifier) Flash(message string) {
	fmt.Fprintln(n.out, flashStyle.Render("✗ "+message))
}

func (n *terminalNotifier) Loading(message string) {
	f, ok := n.out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(n.out, message)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop != nil {
		return
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(message),
		progressbar.OptionSetWriter(n.out),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	n.stop, n.done = make(chan struct{}), make(chan struct{})
	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(n.stop, n.done)
}

// Done stops the spinner if one is running.
func (n *terminalNotifier) Done() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop == nil {
		return
	}
	close(n.stop)
	<-n.done
	n.stop, n.done = nil, nil
}
