// Package vokativ transforms Czech given names and surnames into the
// vocative case used when addressing a person in generated text. The rules
// cover the declension patterns common in supporter data; names that match
// no rule are returned unchanged, which is always a safe address form.
package vokativ

import "strings"

var softConsonants = []string{"š", "č", "ž", "ř", "c", "j", "ď", "ť", "ň"}

// Vocative returns the vocative form of a Czech first or last name.
func Vocative(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)

	switch {
	// Jana -> Jano, Petra -> Petro
	case strings.HasSuffix(lower, "a"):
		return name[:len(name)-1] + "o"

	// vowel endings other than -a do not decline: Jiří, Ivo, Noe
	case hasVowelSuffix(lower):
		return name

	// Marek -> Marku, Vašek -> Vašku
	case strings.HasSuffix(lower, "ek"):
		return name[:len(name)-2] + "ku"

	// Pavel -> Pavle, Karel -> Karle
	case strings.HasSuffix(lower, "el"):
		return name[:len(name)-2] + "le"

	// Petr -> Petře, but Otakar -> Otakare
	case strings.HasSuffix(lower, "r"):
		if len(lower) >= 2 && isConsonant(lower[len(lower)-2]) {
			return name[:len(name)-1] + "ře"
		}
		return name + "e"

	// Tomáš -> Tomáši, Ondřej -> Ondřeji
	case hasSoftSuffix(lower):
		return name + "i"

	// Novák -> Nováku, Patrik -> Patriku, Oleh -> Olehu
	case strings.HasSuffix(lower, "k"), strings.HasSuffix(lower, "g"),
		strings.HasSuffix(lower, "h"), strings.HasSuffix(lower, "ch"):
		return name + "u"

	// Jan -> Jane, David -> Davide
	default:
		return name + "e"
	}
}

func hasVowelSuffix(lower string) bool {
	for _, suffix := range []string{"e", "é", "i", "í", "o", "ó", "u", "ú", "ů", "y", "ý"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func hasSoftSuffix(lower string) bool {
	for _, suffix := range softConsonants {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func isConsonant(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return false
	}
	return b >= 'a' && b <= 'z'
}
