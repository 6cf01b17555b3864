package cnholiday

import (
	"context"
	"errors"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Paragraph is one paragraph of notice text together with the year the
// notice was published for.
type Paragraph struct {
	Text string
	Year int
}

// ParseParagraphs parses paragraphs concurrently and returns their records in
// paragraph order, each cross-year split contributing its earlier part first.
// Paragraphs that are not notices are skipped. Malformed notices do not stop
// the batch: the records of every other paragraph are returned together with
// the joined *NoticeError values.
func ParseParagraphs(ctx context.Context, paragraphs []Paragraph, log *zap.Logger) ([]Record, error) {
	if log == nil {
		log = zap.NewNop()
	}

	type result struct {
		prev, cur *Record
		err       error
	}
	results := make([]result, len(paragraphs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, para := range paragraphs {
		i, para := i, para
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prev, cur, err := NewParser(para.Year, log).Parse(para.Text)
			results[i] = result{prev: prev, cur: cur, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		records []Record
		errs    []error
	)
	for i, res := range results {
		switch {
		case res.err != nil:
			errs = append(errs, &NoticeError{Index: i, Text: paragraphs[i].Text, Err: res.err})
		case res.cur == nil:
			log.Debug("skipping paragraph", zap.Int("index", i))
		default:
			if res.prev != nil {
				records = append(records, *res.prev)
			}
			records = append(records, *res.cur)
		}
	}
	return records, errors.Join(errs...)
}
