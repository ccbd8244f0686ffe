// Package i18n provides the message catalog and language negotiation.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Key identifies a translatable message.
type Key string

const (
	KeyNoValidSelection   Key = "bulk.no_valid_selection"
	KeyBulkDeleteSuccess  Key = "bulk.delete_success"
	KeyBulkDeleteFailed   Key = "bulk.delete_failed"
	KeyBulkDeletePartial  Key = "bulk.delete_partial"
	KeyBulkUpdateSuccess  Key = "bulk.update_success"
	KeyRequestFailed      Key = "request.failed"
	KeyRecordingCap       Key = "recording.cap_reached"
	KeyNoDueDate          Key = "group.no_due_date"
	KeyAllOptionLabel     Key = "filter.all_option"
	KeyInvalidCredentials Key = "auth.invalid_credentials"
)

var catalog = map[language.Tag]map[Key]string{
	language.English: {
		KeyNoValidSelection:   "No valid rows selected",
		KeyBulkDeleteSuccess:  "Deleted %d items",
		KeyBulkDeleteFailed:   "Failed to delete: %s",
		KeyBulkDeletePartial:  "Deleted %d items, %d failed: %s",
		KeyBulkUpdateSuccess:  "Updated %d items",
		KeyRequestFailed:      "Something went wrong, please try again",
		KeyRecordingCap:       "Recording stopped at the %s limit",
		KeyNoDueDate:          "No due date",
		KeyAllOptionLabel:     "All %s",
		KeyInvalidCredentials: "Invalid email or password",
	},
	language.Spanish: {
		KeyNoValidSelection:   "No hay filas válidas seleccionadas",
		KeyBulkDeleteSuccess:  "Se eliminaron %d elementos",
		KeyBulkDeleteFailed:   "No se pudo eliminar: %s",
		KeyBulkDeletePartial:  "Se eliminaron %d elementos, %d fallaron: %s",
		KeyBulkUpdateSuccess:  "Se actualizaron %d elementos",
		KeyRequestFailed:      "Algo salió mal, inténtalo de nuevo",
		KeyRecordingCap:       "La grabación se detuvo al límite de %s",
		KeyNoDueDate:          "Sin fecha de entrega",
		KeyAllOptionLabel:     "Todos %s",
		KeyInvalidCredentials: "Correo o contraseña inválidos",
	},
}

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// Translator resolves message keys for one negotiated language.
type Translator struct {
	tag language.Tag
}

// ForLanguage returns a Translator for the closest supported language to the
// given Accept-Language header value. An empty or unparsable value falls back
// to English.
func ForLanguage(acceptLanguage string) Translator {
	if acceptLanguage == "" {
		return Translator{tag: language.English}
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Translator{tag: language.English}
	}
	_, index, _ := matcher.Match(tags...)
	return Translator{tag: supported[index]}
}

// ForTag returns a Translator for an exact supported tag, falling back to
// English for unsupported tags.
func ForTag(tag language.Tag) Translator {
	if _, ok := catalog[tag]; !ok {
		return Translator{tag: language.English}
	}
	return Translator{tag: tag}
}

// Tag returns the negotiated language.
func (t Translator) Tag() language.Tag {
	if t.tag == (language.Tag{}) {
		return language.English
	}
	return t.tag
}

// T resolves key with fmt.Sprintf-style args. Missing keys fall back to the
// English catalog, then to the raw key string.
func (t Translator) T(key Key, args ...any) string {
	messages := catalog[t.Tag()]
	format, ok := messages[key]
	if !ok {
		format, ok = catalog[language.English][key]
		if !ok {
			return string(key)
		}
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
