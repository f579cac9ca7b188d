package searchform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages_Locales(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en", "Departure location not found. Please choose one of the suggestions."},
		{"en-GB", "Departure location not found. Please choose one of the suggestions."},
		{"es", "No se encontró la ubicación de Salida. Elija una de las sugerencias."},
		{"es-MX", "No se encontró la ubicación de Salida. Elija una de las sugerencias."},
		{"fr", "Departure location not found. Please choose one of the suggestions."},
		{"not a locale", "Departure location not found. Please choose one of the suggestions."},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMessages(tt.locale).NotFound(true))
		})
	}
}

func TestMessages_EveryKeyHasSpanish(t *testing.T) {
	en, es := NewMessages("en"), NewMessages("es")
	pairs := [][2]string{
		{en.SameLocation(), es.SameLocation()},
		{en.InvalidDate(), es.InvalidDate()},
		{en.PastDate(), es.PastDate()},
		{en.ReturnNotAfter(), es.ReturnNotAfter()},
		{en.Passengers(), es.Passengers()},
		{en.Loading(), es.Loading()},
		{en.InvalidText(false), es.InvalidText(false)},
	}
	for _, p := range pairs {
		assert.NotEqual(t, p[0], p[1])
	}
}
