package searchform

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	msgOriginLabel      = "Departure"
	msgDestinationLabel = "Arrival"
	msgNotFound         = "%s location not found. Please choose one of the suggestions."
	msgSameLocation     = "Departure and arrival locations must be different."
	msgInvalidText      = "%s: please use letters and spaces only."
	msgInvalidDate      = "Invalid date format. Please use yyyy-mm-dd."
	msgPastDate         = "Departure date must be tomorrow or later."
	msgReturnNotAfter   = "Return date must be after departure date."
	msgPassengers       = "Number of passengers must be between 1 and 9."
	msgLoading          = "Searching flights..."
)

var translations = map[language.Tag]map[string]string{
	language.Spanish: {
		msgOriginLabel:      "Salida",
		msgDestinationLabel: "Llegada",
		msgNotFound:         "No se encontró la ubicación de %s. Elija una de las sugerencias.",
		msgSameLocation:     "Las ubicaciones de salida y llegada deben ser distintas.",
		msgInvalidText:      "%s: use solo letras y espacios.",
		msgInvalidDate:      "Formato de fecha inválido. Use aaaa-mm-dd.",
		msgPastDate:         "La fecha de salida debe ser mañana o posterior.",
		msgReturnNotAfter:   "La fecha de regreso debe ser posterior a la de salida.",
		msgPassengers:       "El número de pasajeros debe estar entre 1 y 9.",
		msgLoading:          "Buscando vuelos...",
	},
}

func init() {
	// English entries are the keys themselves
	english := make(map[string]string, len(translations[language.Spanish]))
	for key := range translations[language.Spanish] {
		english[key] = key
	}
	translations[language.English] = english

	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Messages renders user-facing form messages in one locale. Unknown locales
// fall back to English.
type Messages struct {
	printer *message.Printer
}

func NewMessages(locale string) Messages {
	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		if base, _ := parsed.Base(); base.String() == "es" {
			tag = language.Spanish
		}
	}
	return Messages{printer: message.NewPrinter(tag)}
}

func (m Messages) fieldLabel(origin bool) string {
	if origin {
		return m.printer.Sprintf(msgOriginLabel)
	}
	return m.printer.Sprintf(msgDestinationLabel)
}

func (m Messages) NotFound(origin bool) string {
	return m.printer.Sprintf(msgNotFound, m.fieldLabel(origin))
}

func (m Messages) InvalidText(origin bool) string {
	return m.printer.Sprintf(msgInvalidText, m.fieldLabel(origin))
}

func (m Messages) SameLocation() string { return m.printer.Sprintf(msgSameLocation) }
func (m Messages) InvalidDate() string { return m.printer.Sprintf(msgInvalidDate) }
func (m Messages) PastDate() string { return m.printer.Sprintf(msgPastDate) }
func (m Messages) ReturnNotAfter() string { return m.printer.Sprintf(msgReturnNotAfter) }
func (m Messages) Passengers() string { return m.printer.Sprintf(msgPassengers) }
func (m Messages) Loading() string { return m.printer.Sprintf(msgLoading) }
