package searchform

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("letters_spaces", lettersAndSpaces); err != nil {
		panic(err)
	}
	return v
}

// lettersAndSpaces accepts text made of letters and spaces with at least one letter.
func lettersAndSpaces(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == ' ':
		default:
			return false
		}
	}
	return letters > 0
}

func validPlaceText(text string) bool {
	return validate.Var(strings.TrimSpace(text), "letters_spaces") == nil
}

func validDate(s string) bool {
	return validate.Var(s, "required,datetime="+dateLayout) == nil
}

// parsePassengers returns the passenger count when s is an integer in [1, 9].
func parsePassengers(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if validate.Var(s, "required,number") != nil {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if validate.Var(n, "gte=1,lte=9") != nil {
		return 0, false
	}
	return n, true
}

// afterToday reports whether date is strictly after the local calendar day of now.
func afterToday(date string, now time.Time) bool {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	t, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return false
	}
	return t.After(midnight)
}

func dateAfter(later, earlier string) bool {
	l, err1 := time.Parse(dateLayout, later)
	e, err2 := time.Parse(dateLayout, earlier)
	if err1 != nil || err2 != nil {
		return false
	}
	return l.After(e)
}
