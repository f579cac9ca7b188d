package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"flightcast/apperr"
	"flightcast/autocomplete"
	"flightcast/models"
	"flightcast/searchform"

	"github.com/spf13/cobra"
)

// terminalView prints a field's suggestion list whenever the controller shows it.
type terminalView struct {
	mu    sync.Mutex
	out   io.Writer
	field string
}

func (v *terminalView) ShowSuggestions(candidates []models.LocationCandidate) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "\n%s suggestions:\n%s\n", v.field, renderCandidates(candidates))
}

func (v *terminalView) HideSuggestions() {}

func (v *terminalView) BindLocation(loc models.SelectedLocation) {
	if loc.Name == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "%s: %s (%s)\n", v.field, loc.Name, loc.IATACode)
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Fill in the search form with live suggestions",
	Long: `Type part of a place name and wait a moment for suggestions. Enter a number
to pick one, more text to search again, or an empty line to keep what you typed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())

		origin, err := a.session.NewController("origin", &terminalView{out: out, field: "From"})
		if err != nil {
			return err
		}
		destination, err := a.session.NewController("destination", &terminalView{out: out, field: "To"})
		if err != nil {
			return err
		}

		for {
			if err := promptLocation(in, out, "From", origin); err != nil {
				return endOfInput(err)
			}
			if err := promptLocation(in, out, "To", destination); err != nil {
				return endOfInput(err)
			}
			form, err := promptForm(in, out)
			if err != nil {
				return endOfInput(err)
			}

			err = submitAndShow(ctx, a, origin, destination, form, out, "")
			if apperr.IsKind(err, apperr.KindValidation) {
				// the banner is already printed; fields keep their text
				continue
			}
			return err
		}
	},
}

func promptLocation(in *bufio.Scanner, out io.Writer, label string, c *autocomplete.Controller) error {
	if err := c.Focus(); err != nil {
		return err
	}
	defer c.Blur()

	fmt.Fprintf(out, "%s: ", label)
	for {
		line, err := readLine(in)
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}

		if n, convErr := strconv.Atoi(line); convErr == nil {
			if _, err := c.Select(n - 1); err == nil {
				return nil
			}
		}

		if err := c.Input(line); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (number, more text, or Enter): ", label)
	}
}

func promptForm(in *bufio.Scanner, out io.Writer) (searchform.Form, error) {
	var form searchform.Form
	fields := []struct {
		label string
		dst   *string
	}{
		{"Depart (yyyy-mm-dd)", &form.DepartDate},
		{"Return (yyyy-mm-dd)", &form.ReturnDate},
		{"Passengers (1-9)", &form.Passengers},
	}
	for _, f := range fields {
		fmt.Fprintf(out, "%s: ", f.label)
		line, err := readLine(in)
		if err != nil {
			return form, err
		}
		*f.dst = strings.TrimSpace(line)
	}
	return form, nil
}

func readLine(in *bufio.Scanner) (string, error) {
	if in.Scan() {
		return in.Text(), nil
	}
	if err := in.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// endOfInput turns a closed stdin into a clean exit.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
