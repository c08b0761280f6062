package http

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

// LocalLang key en c.Locals con el idioma negociado.
const LocalLang = "lang"

// Locale negocia el idioma de los avisos. Un parámetro ?lang= tiene prioridad
// sobre la cabecera Accept-Language.
func Locale(tr *i18n.Translator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accept := c.Query("lang")
		if accept == "" {
			accept = c.Get(fiber.HeaderAcceptLanguage)
		}
		c.Locals(LocalLang, tr.Match(accept))
		return c.Next()
	}
}

// GetLang devuelve el idioma negociado; si el middleware no corrió, español.
func GetLang(c *fiber.Ctx) language.Tag {
	if tag, ok := c.Locals(LocalLang).(language.Tag); ok {
		return tag
	}
	return language.Spanish
}
