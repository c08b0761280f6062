// Package i18n traduce los avisos que se muestran al operario del escáner.
// Los textos se registran en un catálogo de golang.org/x/text por idioma; los
// argumentos son posicionales (%[1]s, %[2]s...) para que cada idioma los ordene.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Claves de los avisos al operario.
const (
	KeyNoGivenProduct  = "NO_GIVEN_PRODUCT"
	KeyQuantityExceeds = "QUANTITY_EXCEEDS_LINE" // producto, cantidad, esperado
	KeyLineAlreadyDone = "LINE_ALREADY_DONE"     // producto
	KeyLinePending     = "LINE_PENDING"          // producto, escaneado, cantidad
	KeyInvalidQuantity = "INVALID_QUANTITY"      // lectura
	KeySaveSuccessful  = "SAVE_SUCCESSFUL"
	KeySaveError       = "SAVE_ERROR"  // producto, cantidad
	KeyErrorFatal      = "ERROR_FATAL" // error
	KeyUnableToAssign  = "UNABLE_TO_ASSIGN"
	KeyStageError      = "STAGE_ERROR" // mensaje del backend
	KeyShipmentDone    = "SHIPMENT_DONE"
	KeyLeavingShipment = "LEAVING_SHIPMENT_DETAILS"
	KeyDeleteShipment  = "DELETE_SHIPMENT"
	KeySessionBusy     = "SESSION_BUSY"
)

var spanish = map[string]string{
	KeyNoGivenProduct:  "No se ha indicado ningún producto",
	KeyQuantityExceeds: "La cantidad %[2]s de %[1]s es mayor que la cantidad de la línea (%[3]s)",
	KeyLineAlreadyDone: "La línea de %[1]s ya está completa",
	KeyLinePending:     "%[1]s: %[2]s de %[3]s. Digite la cantidad",
	KeyInvalidQuantity: "La lectura %[1]q no es una cantidad válida",
	KeySaveSuccessful:  "Envío guardado correctamente",
	KeySaveError:       "No hay stock suficiente de %[1]s para mover %[2]s",
	KeyErrorFatal:      "Error inesperado: %[1]s",
	KeyUnableToAssign:  "No se pudo reservar el envío",
	KeyStageError:      "Error al cambiar el estado: %[1]s",
	KeyShipmentDone:    "Envío finalizado",
	KeyLeavingShipment: "¿Salir del envío? Las cantidades sin guardar se perderán",
	KeyDeleteShipment:  "¿Eliminar el envío?",
	KeySessionBusy:     "Espere, se está procesando la lectura anterior",
}

var english = map[string]string{
	KeyNoGivenProduct:  "No product specified",
	KeyQuantityExceeds: "Quantity %[2]s of %[1]s is bigger than line quantity (%[3]s)",
	KeyLineAlreadyDone: "The %[1]s line is already complete",
	KeyLinePending:     "%[1]s: %[2]s of %[3]s. Enter the quantity",
	KeyInvalidQuantity: "Input %[1]q is not a valid quantity",
	KeySaveSuccessful:  "Shipment saved",
	KeySaveError:       "Not enough stock of %[1]s to move %[2]s",
	KeyErrorFatal:      "Unexpected error: %[1]s",
	KeyUnableToAssign:  "Unable to assign",
	KeyStageError:      "Error while changing state: %[1]s",
	KeyShipmentDone:    "Shipment done",
	KeyLeavingShipment: "Leave the shipment? Unsaved quantities will be lost",
	KeyDeleteShipment:  "Delete the shipment?",
	KeySessionBusy:     "Wait, the previous input is still being processed",
}

var supported = []language.Tag{language.Spanish, language.English}

// Translator resuelve claves de aviso al texto del idioma negociado.
type Translator struct {
	cat      *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// New construye el traductor. defaultLang es el idioma usado cuando el cliente no indica uno soportado.
func New(defaultLang string) *Translator {
	fallback := language.Spanish
	if tag, err := language.Parse(defaultLang); err == nil {
		_, idx, _ := language.NewMatcher(supported).Match(tag)
		fallback = supported[idx]
	}
	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for key, msg := range spanish {
		_ = b.SetString(language.Spanish, key, msg)
	}
	for key, msg := range english {
		_ = b.SetString(language.English, key, msg)
	}
	return &Translator{cat: b, matcher: language.NewMatcher(supported), fallback: fallback}
}

// Match negocia el idioma a partir de una cabecera Accept-Language (o un código como "en").
func (t *Translator) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return t.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.fallback
	}
	return supported[idx]
}

// Translate devuelve el texto de key en el idioma tag con los argumentos posicionales.
func (t *Translator) Translate(tag language.Tag, key string, args ...string) string {
	p := message.NewPrinter(tag, message.Catalog(t.cat))
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return p.Sprintf(key, vals...)
}
