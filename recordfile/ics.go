package recordfile

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

const (
	icsProductID    = "-//rabitt1ove//cn-holidays//ZH"
	icsCalendarName = "中国法定节假日"
	icsTimezone     = "Asia/Shanghai"
	icsUIDDomain    = "cn-holidays"
	icsLineLimit    = 75
)

// ICSOptions tunes the iCalendar export.
type ICSOptions struct {
	// CalendarName is the X-WR-CALNAME value; empty means "中国法定节假日".
	CalendarName string
	// Stamp is the DTSTAMP of every event; zero means the current time.
	Stamp time.Time
}

// WriteICS writes records as an iCalendar feed: one all-day event per
// holiday span and one per makeup day. UIDs depend only on the record, so
// re-exporting an updated set lets calendar clients replace events in place.
func WriteICS(w io.Writer, records []cnholiday.Record, opts ICSOptions) error {
	if opts.CalendarName == "" {
		opts.CalendarName = icsCalendarName
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}
	stamp := opts.Stamp.UTC().Format("20060102T150405Z")

	iw := &icsWriter{w: w}
	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:" + icsProductID)
	iw.line("METHOD:PUBLISH")
	iw.line("CALSCALE:GREGORIAN")
	iw.line("X-WR-CALNAME:" + escapeText(opts.CalendarName))
	iw.line("X-WR-TIMEZONE:" + icsTimezone)

	for _, r := range records {
		iw.event(
			fmt.Sprintf("holiday-%s-%d@%s", icsDate(r.StartDate), r.Days, icsUIDDomain),
			stamp, r.StartDate, r.EndDate().AddDays(1),
			r.Name,
			fmt.Sprintf("%s放假，共%d天", r.Name, r.Days),
		)
		for _, m := range r.MakeupDays {
			iw.event(
				fmt.Sprintf("makeup-%s@%s", icsDate(m), icsUIDDomain),
				stamp, m, m.AddDays(1),
				r.Name+"调休上班",
				fmt.Sprintf("%s调休，%s上班", r.Name, m),
			)
		}
	}

	iw.line("END:VCALENDAR")
	return iw.err
}

// icsWriter emits folded CRLF content lines and keeps the first write error.
type icsWriter struct {
	w   io.Writer
	err error
}

func (iw *icsWriter) event(uid, stamp string, start, end cnholiday.Date, summary, description string) {
	iw.line("BEGIN:VEVENT")
	iw.line("UID:" + uid)
	iw.line("DTSTAMP:" + stamp)
	iw.line("DTSTART;VALUE=DATE:" + icsDate(start))
	iw.line("DTEND;VALUE=DATE:" + icsDate(end))
	iw.line("SUMMARY:" + escapeText(summary))
	iw.line("DESCRIPTION:" + escapeText(description))
	iw.line("TRANSP:TRANSPARENT")
	iw.line("END:VEVENT")
}

func (iw *icsWriter) line(s string) {
	if iw.err != nil {
		return
	}
	_, iw.err = io.WriteString(iw.w, foldLine(s))
}

func icsDate(d cnholiday.Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}

// foldLine splits s into lines of at most icsLineLimit octets, never inside
// a UTF-8 sequence, each continuation starting with a space.
func foldLine(s string) string {
	var b strings.Builder
	limit := icsLineLimit
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		limit = icsLineLimit - 1
	}
	b.WriteString(s)
	b.WriteString("\r\n")
	return b.String()
}
