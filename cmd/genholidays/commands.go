package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cnholiday "github.com/rabitt1ove/cn-holidays"
	"github.com/rabitt1ove/cn-holidays/recordfile"
)

const maxParagraphSize = 1024 * 1024

func (a *app) fetchCmd() *cobra.Command {
	var (
		years  []int
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Fetch the holiday notices of the given years and merge them into a record file",
		Example: "genholidays fetch --year 2023 --year 2024 --output holidays.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("output") {
				a.cfg.Output = output
			}
			if cmd.Flags().Changed("format") {
				f, err := recordfile.ParseFormat(format)
				if err != nil {
					return err
				}
				a.cfg.Format = f
			}
			client := &http.Client{Timeout: a.cfg.Timeout}
			return a.fetch(cmd.Context(), client, years)
		},
	}
	cmd.Flags().IntSliceVarP(&years, "year", "y", nil, "notice year to fetch (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", defaultOutput, "record file to merge into")
	cmd.Flags().StringVarP(&format, "format", "f", "", "record file format (json, snapshot, csv); inferred from the extension by default")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func (a *app) fetch(ctx context.Context, client *http.Client, years []int) error {
	paragraphs, err := newFetcher(a.cfg, client, a.log).fetchYears(ctx, years)
	if err != nil {
		return err
	}
	records, err := cnholiday.ParseParagraphs(ctx, paragraphs, a.log)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	malformed := a.reportMalformed(err)
	if len(records) == 0 {
		return fmt.Errorf("no holiday records found in %d paragraphs", len(paragraphs))
	}

	existing, err := recordfile.ReadFile(a.cfg.Output, a.cfg.Format)
	if err != nil && !errors.Is(err, cnholiday.ErrMissingRecordSource) {
		return err
	}
	merged := recordfile.Merge(existing, records)
	if err := recordfile.Save(a.cfg.Output, a.cfg.Format, merged); err != nil {
		return err
	}
	a.log.Info("wrote records",
		zap.String("output", a.cfg.Output),
		zap.Int("paragraphs", len(paragraphs)),
		zap.Int("parsed", len(records)),
		zap.Int("malformed", malformed),
		zap.Int("total", len(merged)))
	return nil
}

// reportMalformed logs each paragraph failure in a ParseParagraphs error and
// returns how many there were.
func (a *app) reportMalformed(err error) int {
	if err == nil {
		return 0
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var ne *cnholiday.NoticeError
		if errors.As(e, &ne) {
			a.log.Warn("malformed notice paragraph",
				zap.Int("index", ne.Index),
				zap.String("text", ne.Text),
				zap.Error(ne.Err))
			continue
		}
		a.log.Error("parse failed", zap.Error(e))
	}
	return len(errs)
}

func (a *app) parseCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse notice paragraphs, one per line, and print the records as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			paragraphs, err := readParagraphs(in, year)
			if err != nil {
				return err
			}
			records, err := cnholiday.ParseParagraphs(cmd.Context(), paragraphs, a.log)
			if ctx := cmd.Context(); ctx.Err() != nil {
				return ctx.Err()
			}
			malformed := a.reportMalformed(err)
			if err := recordfile.Encode(cmd.OutOrStdout(), recordfile.JSON, records); err != nil {
				return err
			}
			if malformed > 0 {
				return fmt.Errorf("%d malformed paragraphs", malformed)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "reference year of the notice")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func readParagraphs(r io.Reader, year int) ([]cnholiday.Paragraph, error) {
	var ps []cnholiday.Paragraph
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxParagraphSize)
	for sc.Scan() {
		if text := strings.TrimSpace(sc.Text()); text != "" {
			ps = append(ps, cnholiday.Paragraph{Text: text, Year: year})
		}
	}
	return ps, sc.Err()
}

func (a *app) queryCmd() *cobra.Command {
	var (
		year int
		data string
	)
	cmd := &cobra.Command{
		Use:     "query DATE...",
		Short:   "Classify dates as holiday, makeup, workday or weekend",
		Example: "genholidays query --year 2023 2023-10-06 2023-10-07",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(data)
			if err != nil {
				return err
			}
			h, err := cnholiday.New(year, store)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				d, err := cnholiday.ParseDate(arg)
				if err != nil {
					return err
				}
				if d.Year != year {
					a.log.Warn("date outside the queried year", zap.Stringer("date", d), zap.Int("year", year))
				}
				fmt.Fprintln(out, classify(h, d))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 0, "year whose records answer the queries")
	cmd.Flags().StringVarP(&data, "data", "d", "", "record file; the built-in records by default")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func classify(h *cnholiday.Holiday, d cnholiday.Date) string {
	t := d.Time()
	switch {
	case h.IsHoliday(t):
		return fmt.Sprintf("%s holiday %s", d, h.HolidayName(t))
	case h.IsMakeupDay(t):
		return fmt.Sprintf("%s makeup", d)
	case h.IsWorkday(t):
		return fmt.Sprintf("%s workday", d)
	default:
		return fmt.Sprintf("%s weekend", d)
	}
}

func (a *app) openStore(data string) (cnholiday.RecordStore, error) {
	if data == "" {
		return cnholiday.Builtin(), nil
	}
	return recordfile.Load(data, "")
}

func (a *app) exportCmd() *cobra.Command {
	var (
		data         string
		output       string
		format       string
		calendarName string
	)
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Convert a record file to another format",
		Example: "genholidays export --data holidays.json --output holidays.ics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := recordfile.ReadFile(data, "")
			if err != nil {
				return err
			}

			var f recordfile.Format
			switch {
			case format != "":
				f, err = recordfile.ParseFormat(format)
			case output == "-":
				err = errors.New("--format is required when writing to stdout")
			default:
				f, err = recordfile.FormatFromPath(output)
			}
			if err != nil {
				return err
			}

			if output == "-" {
				return encode(cmd.OutOrStdout(), f, records, calendarName)
			}
			if f == recordfile.ICS {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := encode(file, f, records, calendarName); err != nil {
					file.Close()
					return err
				}
				return file.Close()
			}
			if err := recordfile.Save(output, f, records); err != nil {
				return err
			}
			a.log.Info("exported records", zap.String("output", output), zap.String("format", string(f)), zap.Int("records", len(records)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "record file to read")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (json, snapshot, csv, ics)")
	cmd.Flags().StringVar(&calendarName, "calendar-name", "", "calendar name for ics output")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func encode(w io.Writer, f recordfile.Format, records []cnholiday.Record, calendarName string) error {
	if f == recordfile.ICS {
		return recordfile.WriteICS(w, records, recordfile.ICSOptions{CalendarName: calendarName})
	}
	return recordfile.Encode(w, f, records)
}

func (a *app) gosrcCmd() *cobra.Command {
	var (
		data   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "gosrc",
		Short: "Generate the Go source of the built-in records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var records []cnholiday.Record
			if data == "" {
				records = cnholiday.Builtin().All()
			} else {
				var err error
				if records, err = recordfile.ReadFile(data, ""); err != nil {
					return err
				}
			}
			src, err := generate(records)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(src)
				return err
			}
			if err := os.WriteFile(output, src, 0o644); err != nil {
				return err
			}
			a.log.Info("wrote built-in records", zap.String("output", output), zap.Int("records", len(records)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "record file; the current built-in records by default")
	cmd.Flags().StringVarP(&output, "output", "o", "builtin_data.go", "output file, - for stdout")
	return cmd
}
