package cnholiday

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	ordinal   = `^[一二三四五六七八九十]+、`
	fullDate  = `(?:\d{4}年)?\d{1,2}月\d{1,2}日`
	endDate   = `(?:\d{4}年)?(?:\d{1,2}月)?\d{1,2}日`
	annotated = `(?:（[^）]*）|\([^)]*\))?`
)

var (
	// reNotice matches "<ordinal>、<name>：<start>[至<end>]<filler>，共<N>天。[<makeup>上班]".
	reNotice = regexp.MustCompile(ordinal + `(.+?)：(` + fullDate + `)` + annotated +
		`(?:至(` + endDate + `))?[^，。]*，共(\d+)天。(?:(.*?)上班)?`)

	// reSingleDay matches "<ordinal>、<name>：<date>[（…）]放假<N>天".
	reSingleDay = regexp.MustCompile(ordinal + `(.+?)：(` + fullDate + `)` + annotated + `放假(\d+)天`)
)

// Parser extracts holiday records from notice paragraphs published for one
// reference year. A Parser holds no mutable state and may be shared.
type Parser struct {
	year int
	log  *zap.Logger
}

// NewParser returns a Parser for notices of the given reference year.
// A nil logger disables logging.
func NewParser(year int, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{year: year, log: log}
}

// Year returns the reference year used for dates that omit their year.
func (p *Parser) Year() int { return p.year }

// ParseNotice parses one paragraph with a default Parser for year.
func ParseNotice(text string, year int) (prev, cur *Record, err error) {
	return NewParser(year, nil).Parse(text)
}

// Parse extracts the holiday announced by text.
//
// A paragraph that is not a holiday notice yields (nil, nil, nil). A notice
// whose span crosses into the next year, written with explicit years on both
// ends, yields the earlier year's part as prev and the later year's part as
// cur. Every other notice yields a single record as cur. Errors wrap
// ErrMalformedNotice.
func (p *Parser) Parse(text string) (prev, cur *Record, err error) {
	text = normalizeText(text)

	var name, startText, endText, countText, makeupText string
	if m := reNotice.FindStringSubmatch(text); m != nil {
		name, startText, endText, countText, makeupText = m[1], m[2], m[3], m[4], m[5]
	} else if m := reSingleDay.FindStringSubmatch(text); m != nil {
		name, startText, countText = m[1], m[2], m[3]
	} else {
		return nil, nil, nil
	}

	days, err := strconv.Atoi(countText)
	if err != nil || days < 1 {
		return nil, nil, fmt.Errorf("%w: %s: day count %q", ErrMalformedNotice, name, countText)
	}

	startTok, err := parseDateToken(startText)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrMalformedNotice, name, err)
	}
	start, err := startTok.resolve(p.year, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: start date: %w", ErrMalformedNotice, name, err)
	}

	if endText != "" {
		endTok, err := parseDateToken(endText)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrMalformedNotice, name, err)
		}
		end, err := endTok.resolve(start.Year, start.Month)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: end date: %w", ErrMalformedNotice, name, err)
		}
		if span := start.DaysUntil(end) + 1; span != days {
			return nil, nil, fmt.Errorf("%w: %s: %s..%s spans %d days, notice says %d",
				ErrMalformedNotice, name, start, end, span, days)
		}

		if startTok.hasYear && endTok.hasYear && endTok.year != startTok.year {
			if endTok.year != startTok.year+1 {
				return nil, nil, fmt.Errorf("%w: %s: span %s..%s crosses more than one year boundary",
					ErrMalformedNotice, name, start, end)
			}
			if makeupText != "" {
				p.log.Warn("dropping makeup clause of cross-year notice",
					zap.String("name", name),
					zap.String("clause", makeupText),
					zap.Int("year", p.year))
			}
			a, b, err := splitCrossYear(name, start, days)
			if err != nil {
				return nil, nil, err
			}
			return &a, &b, nil
		}
	}

	makeupDays, err := p.extractMakeupDays(makeupText)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrMalformedNotice, name, err)
	}
	rec, err := NewRecord(start.Year, name, start, days, makeupDays)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedNotice, err)
	}
	return nil, &rec, nil
}

// splitCrossYear divides a holiday of total days starting at start into the
// part up to December 31 and the remainder from January 1 of the next year.
// Neither part carries makeup days.
func splitCrossYear(name string, start Date, total int) (Record, Record, error) {
	yearEnd := Date{Year: start.Year, Month: time.December, Day: 31}
	firstDays := start.DaysUntil(yearEnd) + 1
	rest := total - firstDays
	if firstDays < 1 || rest < 1 {
		return Record{}, Record{}, fmt.Errorf("%w: %s: %d days from %s do not cross into %d",
			ErrMalformedNotice, name, total, start, start.Year+1)
	}

	a, err := NewRecord(start.Year, name, start, firstDays, nil)
	if err != nil {
		return Record{}, Record{}, fmt.Errorf("%w: %w", ErrMalformedNotice, err)
	}
	next := Date{Year: start.Year + 1, Month: time.January, Day: 1}
	b, err := NewRecord(next.Year, name, next, rest, nil)
	if err != nil {
		return Record{}, Record{}, fmt.Errorf("%w: %w", ErrMalformedNotice, err)
	}
	return a, b, nil
}
