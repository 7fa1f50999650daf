package utils

// Server-side messages only. Questionnaire texts live in the catalog.

// SupportedLocales lists the locales the API answers in.
var SupportedLocales = []string{"de", "en"}

const fallbackLocale = "en"

var translations = map[string]map[string]string{
	"en": {
		"health.ok":               "ok",
		"error.invalid":           "The request contains invalid input.",
		"error.unprocessable":     "The questionnaire cannot be evaluated yet.",
		"error.conflict":          "The questionnaire is not in progress. Start it first.",
		"error.not_found":         "Nothing found.",
		"error.unavailable":       "This feature is currently unavailable.",
		"error.bad_gateway":       "The analysis service did not respond correctly.",
		"error.too_many_requests": "Too many requests. Please wait a moment.",
		"error.internal":          "An internal error occurred.",
		"error.session_required":  "No session. Please reload the page.",
		"error.bad_json":          "The request body is not valid JSON.",
		"error.incomplete":        "Please answer all questions before submitting.",
		"results.cleared":         "Résumé analysis removed.",
	},
	"de": {
		"health.ok":               "ok",
		"error.invalid":           "Die Anfrage enthält ungültige Eingaben.",
		"error.unprocessable":     "Der Fragebogen kann noch nicht ausgewertet werden.",
		"error.conflict":          "Der Fragebogen läuft nicht. Bitte zuerst starten.",
		"error.not_found":         "Nichts gefunden.",
		"error.unavailable":       "Diese Funktion ist derzeit nicht verfügbar.",
		"error.bad_gateway":       "Der Analysedienst hat nicht korrekt geantwortet.",
		"error.too_many_requests": "Zu viele Anfragen. Bitte kurz warten.",
		"error.internal":          "Ein interner Fehler ist aufgetreten.",
		"error.session_required":  "Keine Sitzung. Bitte die Seite neu laden.",
		"error.bad_json":          "Der Anfrageinhalt ist kein gültiges JSON.",
		"error.incomplete":        "Bitte alle Fragen beantworten, bevor Sie absenden.",
		"results.cleared":         "Lebenslauf-Analyse entfernt.",
	},
}

// T returns the message for key in locale, falling back to English and
// finally to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[fallbackLocale][key]; ok {
		return v
	}
	return key
}
