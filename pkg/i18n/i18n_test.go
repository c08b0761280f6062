package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

func TestTranslate_EspanolPorDefecto(t *testing.T) {
	tr := i18n.New("es")
	tag := tr.Match("")
	assert.Equal(t, language.Spanish, tag)
	assert.Equal(t, "No hay stock suficiente de Widget para mover 10",
		tr.Translate(tag, i18n.KeySaveError, "Widget", "10"))
}

func TestTranslate_NegociaIngles(t *testing.T) {
	tr := i18n.New("es")
	tag := tr.Match("en-US,en;q=0.9,es;q=0.5")
	assert.Equal(t, language.English, tag)
	assert.Equal(t, "Quantity 6 of Widget is bigger than line quantity (5)",
		tr.Translate(tag, i18n.KeyQuantityExceeds, "Widget", "6", "5"))
}

func TestMatch_IdiomaNoSoportadoUsaFallback(t *testing.T) {
	tr := i18n.New("en")
	assert.Equal(t, language.English, tr.Match("ja"))
	assert.Equal(t, language.English, tr.Match(";;;"))
}

func TestTranslate_TodasLasClavesTienenTexto(t *testing.T) {
	tr := i18n.New("es")
	keys := []string{
		i18n.KeyNoGivenProduct, i18n.KeySaveSuccessful, i18n.KeyUnableToAssign,
		i18n.KeyShipmentDone, i18n.KeyLeavingShipment, i18n.KeyDeleteShipment, i18n.KeySessionBusy,
	}
	for _, k := range keys {
		for _, tag := range []language.Tag{language.Spanish, language.English} {
			assert.NotEqual(t, k, tr.Translate(tag, k), "clave %s sin traducción en %s", k, tag)
		}
	}
}
