// Package admincodes maps Swedish administrative names to the codes
// the upstream registries filter on.
package admincodes

import "strings"

// countyByName maps lower-cased county names (with and without the
// "s län" suffix) to their two-digit code (SCB läneskod).
var countyByName = map[string]string{
	"stockholm":       "01",
	"uppsala":         "03",
	"södermanland":    "04",
	"östergötland":    "05",
	"jönköping":       "06",
	"kronoberg":       "07",
	"kalmar":          "08",
	"gotland":         "09",
	"blekinge":        "10",
	"skåne":           "12",
	"halland":         "13",
	"västra götaland": "14",
	"värmland":        "17",
	"örebro":          "18",
	"västmanland":     "19",
	"dalarna":         "20",
	"gävleborg":       "21",
	"västernorrland":  "22",
	"jämtland":        "23",
	"västerbotten":    "24",
	"norrbotten":      "25",
}

// countyName maps codes back to display names.
var countyName = map[string]string{
	"01": "Stockholms län",
	"03": "Uppsala län",
	"04": "Södermanlands län",
	"05": "Östergötlands län",
	"06": "Jönköpings län",
	"07": "Kronobergs län",
	"08": "Kalmar län",
	"09": "Gotlands län",
	"10": "Blekinge län",
	"12": "Skåne län",
	"13": "Hallands län",
	"14": "Västra Götalands län",
	"17": "Värmlands län",
	"18": "Örebro län",
	"19": "Västmanlands län",
	"20": "Dalarnas län",
	"21": "Gävleborgs län",
	"22": "Västernorrlands län",
	"23": "Jämtlands län",
	"24": "Västerbottens län",
	"25": "Norrbottens län",
}

// CountyCode resolves a county given either its two-digit code or its
// name ("Skåne", "Skåne län", "skåne"). Returns "" when unknown.
func CountyCode(nameOrCode string) string {
	s := strings.TrimSpace(nameOrCode)
	if _, ok := countyName[s]; ok {
		return s
	}

	key := strings.ToLower(s)
	for _, suffix := range []string{" län", "s län"} {
		key = strings.TrimSuffix(key, suffix)
	}
	// Genitive names: "stockholms" -> "stockholm" etc.
	if code, ok := countyByName[key]; ok {
		return code
	}
	if code, ok := countyByName[strings.TrimSuffix(key, "s")]; ok {
		return code
	}
	return ""
}

// CountyName returns the display name for a county code, or "" when
// the code is unknown.
func CountyName(code string) string {
	return countyName[code]
}
