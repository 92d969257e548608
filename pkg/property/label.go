package property

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseBibKey extracts the first author and year from a citation key of the
// form "<author>_<words>_<year>", e.g. "abramov_deuterium_1990". It returns
// ("", 0) for free-text sources.
func ParseBibKey(source string) (author string, year int) {
	parts := strings.Split(strings.TrimSpace(source), "_")
	if len(parts) < 2 {
		return "", 0
	}

	last := parts[len(parts)-1]
	if len(last) != 4 {
		return "", 0
	}
	y, err := strconv.Atoi(last)
	if err != nil {
		return "", 0
	}

	first := parts[0]
	if first == "" {
		return "", 0
	}
	for _, r := range first {
		if !unicode.IsLetter(r) && r != '-' {
			return "", 0
		}
	}
	return strings.ToLower(first), y
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Label returns the display name of the record: the explicit name if one was
// given, otherwise "{isotope} {Author} ({year})".
func (p *Property) Label() string {
	if p.name != "" {
		return p.name
	}

	author := capitalize(p.author)
	if author == "" {
		author = p.source
	}
	if p.year == 0 {
		return string(p.isotope) + " " + author
	}
	return string(p.isotope) + " " + author + " (" + strconv.Itoa(p.year) + ")"
}

func (p *Property) String() string {
	return p.material + " " + string(p.kind) + " " + p.Label()
}
