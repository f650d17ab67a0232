package scan

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/header"
)

// Location is the byte range of one candidate message in a complete buffer.
type Location struct {
	Offset int64
	Length int
}

// Index walks a complete buffer reading only storage and standard headers,
// and returns the located messages in order together with the spans that
// could not start a message. A header that fails to parse is skipped one
// byte at a time. A location whose headers parse is taken whole even if its
// payload later fails in DecodeAll, so Index never searches inside it for
// another message the way Scanner does. Use MergeCorrupt to coalesce such a
// failure with the gaps around it.
func Index(buf []byte, framing protocol.Framing) ([]Location, []Span) {
	var (
		locs  []Location
		spans []Span
		gap   *Span
	)
	mark := func(off, n int, reason string) {
		if n <= 0 {
			return
		}
		if gap == nil {
			gap = &Span{Offset: int64(off), Reason: reason}
		}
		gap.Length += n
	}

	off := 0
	for off < len(buf) {
		if framing == protocol.FramingStorage {
			i := header.IndexStorageMagic(buf[off:])
			if i < 0 {
				mark(off, len(buf)-off, "no storage header")
				break
			}
			mark(off, i, "no storage header")
			off += i
		}

		total, err := protocol.Peek(buf[off:], framing)
		switch {
		case err != nil:
			mark(off, 1, err.Error())
			off++
			continue
		case total > len(buf)-off:
			mark(off, 1, "truncated message")
			off++
			continue
		}
		if gap != nil {
			spans = append(spans, *gap)
			gap = nil
		}
		locs = append(locs, Location{Offset: int64(off), Length: total})
		off += total
	}
	if gap != nil {
		spans = append(spans, *gap)
	}
	return locs, spans
}

// MergeCorrupt sorts outcomes by offset and joins corrupt outcomes that touch
// end to start into one span carrying the first reason. It works in place
// on the backing array of outcomes.
func MergeCorrupt(outcomes []Outcome) []Outcome {
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Offset < outcomes[j].Offset })
	merged := outcomes[:0]
	for _, o := range outcomes {
		if n := len(merged); n > 0 && o.Kind == KindCorrupt {
			last := &merged[n-1]
			if last.Kind == KindCorrupt && last.Offset+int64(last.Length) == o.Offset {
				last.Length += o.Length
				last.Span.Length += o.Length
				continue
			}
		}
		merged = append(merged, o)
	}
	return merged
}

// DecodeAll decodes every location in parallel on up to workers goroutines
// sharing buf read-only. Results keep the order of locs. A location that
// fails to decode yields a KindCorrupt outcome covering its range.
func DecodeAll(ctx context.Context, buf []byte, locs []Location, framing protocol.Framing, workers int) ([]Outcome, error) {
	out := make([]Outcome, len(locs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, loc := range locs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := buf[loc.Offset : loc.Offset+int64(loc.Length)]
			m, n, err := protocol.Decode(b, framing)
			if err != nil {
				out[i] = Outcome{
					Kind:   KindCorrupt,
					Offset: loc.Offset,
					Length: loc.Length,
					Span:   Span{Offset: loc.Offset, Length: loc.Length, Reason: err.Error()},
				}
				return nil
			}
			out[i] = Outcome{Kind: KindMessage, Offset: loc.Offset, Length: n, Message: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
