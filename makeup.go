package cnholiday

import (
	"fmt"
	"regexp"
	"strings"
)

// reAnnotation matches a parenthesised remark such as "（星期日）".
var reAnnotation = regexp.MustCompile(`（[^）]*）|\([^)]*\)`)

// extractMakeupDays parses a clause like "4月23日（星期日）、5月6日（星期六）"
// into dates, in source order. Fragments without a year take the parser's
// reference year. An empty clause yields an empty, non-nil list.
func (p *Parser) extractMakeupDays(clause string) ([]Date, error) {
	days := []Date{}
	clause = reAnnotation.ReplaceAllString(normalizeText(clause), "")
	if clause == "" {
		return days, nil
	}

	for _, frag := range strings.Split(clause, "、") {
		if frag == "" {
			continue
		}
		tok, err := parseDateToken(frag)
		if err != nil {
			return nil, fmt.Errorf("makeup day %q: %w", frag, err)
		}
		if !tok.hasMonth {
			return nil, fmt.Errorf("makeup day %q: %w: missing month", frag, ErrInvalidDate)
		}
		d, err := tok.resolve(p.year, 0)
		if err != nil {
			return nil, fmt.Errorf("makeup day %q: %w", frag, err)
		}
		days = append(days, d)
	}
	return days, nil
}
