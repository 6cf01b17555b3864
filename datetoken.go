package cnholiday

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// reDateToken matches "[YYYY年][M月]D日" fragments as they appear in notices.
var reDateToken = regexp.MustCompile(`^(?:(\d{4})年)?(?:(\d{1,2})月)?(\d{1,2})日?$`)

// dateToken is a date fragment whose year and month may be omitted.
type dateToken struct {
	year, month, day  int
	hasYear, hasMonth bool
}

func parseDateToken(s string) (dateToken, error) {
	m := reDateToken.FindStringSubmatch(s)
	if m == nil {
		return dateToken{}, fmt.Errorf("%w: token %q", ErrInvalidDate, s)
	}
	var tok dateToken
	if m[1] != "" {
		tok.year, _ = strconv.Atoi(m[1])
		tok.hasYear = true
	}
	if m[2] != "" {
		tok.month, _ = strconv.Atoi(m[2])
		tok.hasMonth = true
	}
	tok.day, _ = strconv.Atoi(m[3])
	return tok, nil
}

// resolve fills the omitted parts of tok from year and month.
func (tok dateToken) resolve(year int, month time.Month) (Date, error) {
	if tok.hasYear {
		year = tok.year
	}
	if tok.hasMonth {
		month = time.Month(tok.month)
	}
	return NewDate(year, month, tok.day)
}

// NormalizeDateToken converts a notice date fragment such as "2022年12月31日"
// or "4月5日" into a Date, taking the year from defaultYear when the
// fragment has none. Full-width digits are accepted.
func NormalizeDateToken(s string, defaultYear int) (Date, error) {
	tok, err := parseDateToken(normalizeText(s))
	if err != nil {
		return Date{}, err
	}
	if !tok.hasMonth {
		return Date{}, fmt.Errorf("%w: token %q has no month", ErrInvalidDate, s)
	}
	return tok.resolve(defaultYear, 0)
}

// normalizeText folds full-width digits to ASCII and drops all whitespace.
// Full-width punctuation is left alone: the notice grammar is written in it.
func normalizeText(s string) string {
	fullWidthDigit := runes.Predicate(func(r rune) bool { return r >= '０' && r <= '９' })
	folded, _, err := transform.String(runes.If(fullWidthDigit, width.Narrow, nil), s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}
