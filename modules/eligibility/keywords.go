package eligibility

// Keyword sets are closed enumerations loaded once at startup (spec §9
// Design Note "Eligibility keyword sets"): data, not code, so they stay easy
// to extend and are driven entirely by the unit tests in filter_test.go.

// temporalKeywords trigger disqualification rule 1. The match is an exact
// substring scan, intentionally conservative: "temporalmente" still matches
// "temporal".
var temporalKeywords = []string{
	"temporal",
	"por obra",
	"obra y servicio",
	"eventual",
	"interinidad",
	"interino",
	"interina",
	"sustitución",
	"sustitucion",
	"fijo discontinuo",
	"fijo-discontinuo",
	"fixed-term",
	"fixed term",
	"temporary contract",
	"contrato de duración determinada",
}

// partTimeKeywords trigger disqualification rule 2.
var partTimeKeywords = []string{
	"media jornada",
	"medio jornada",
	"tiempo parcial",
	"part time",
	"part-time",
	"jornada parcial",
	"jornada reducida",
}
