// Package scan recovers message boundaries from a continuous DLT byte stream.
//
// A Scanner is fed bytes incrementally and yields one Outcome per Next call:
// either a decoded message or a report of a corrupt span that was skipped to
// reach the next message. Decoding never aborts the stream.
package scan

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

var (
	// ErrNeedMoreInput means Next cannot make progress until more bytes are
	// fed or Finish is called.
	ErrNeedMoreInput = errors.New("scan: awaiting more input")
	ErrBufferFull    = errors.New("scan: buffer full")
	ErrFinished      = errors.New("scan: feed after finish")
)

// State is the scanner position in its search loop.
type State uint8

const (
	Searching State = iota
	HeaderParsed
	Emit
	Resync
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case HeaderParsed:
		return "header_parsed"
	case Emit:
		return "emit"
	case Resync:
		return "resync"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type Kind uint8

const (
	KindMessage Kind = iota + 1
	KindCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Span is a run of skipped bytes at an absolute stream offset. Reason is the
// first failure seen in the run.
type Span struct {
	Offset int64
	Length int
	Reason string
}

// Outcome is one result of Next. Message is set for KindMessage and Span for
// KindCorrupt; Offset is the absolute stream offset of either.
type Outcome struct {
	Kind    Kind
	Offset  int64
	Length  int
	Message protocol.Message
	Span    Span
}

// Scanner is not safe for concurrent use.
type Scanner struct {
	framing   protocol.Framing
	maxBuffer int
	metrics   Metrics
	log       zerolog.Logger

	buf  []byte
	r    int   // read cursor into buf
	base int64 // stream offset of buf[0]

	state    State
	want     int // declared size of the candidate at r, valid in HeaderParsed
	reason   string
	pending  *Span
	queued   *Outcome
	finished bool
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		framing:   protocol.FramingStorage,
		maxBuffer: DefaultBuffer,
		metrics:   nopMetrics{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Feed appends p to the unconsumed input. It fails with ErrBufferFull when
// the unconsumed input would exceed the configured maximum; drain with Next
// and retry.
func (s *Scanner) Feed(p []byte) error {
	if s.finished {
		return ErrFinished
	}
	if s.Buffered()+len(p) > s.maxBuffer {
		return fmt.Errorf("%w: %d buffered, %d fed, max %d", ErrBufferFull, s.Buffered(), len(p), s.maxBuffer)
	}
	s.compact()
	s.buf = append(s.buf, p...)
	return nil
}

// Write implements io.Writer on top of Feed.
func (s *Scanner) Write(p []byte) (int, error) {
	if err := s.Feed(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Finish marks the end of input. Remaining bytes that do not form a message
// are reported as a final corrupt span.
func (s *Scanner) Finish() {
	s.finished = true
}

// Buffered is the number of fed bytes not yet consumed.
func (s *Scanner) Buffered() int { return len(s.buf) - s.r }

// Offset is the absolute stream offset of the next unconsumed byte.
func (s *Scanner) Offset() int64 { return s.base + int64(s.r) }

func (s *Scanner) State() State { return s.state }

// Next returns the next outcome. It returns ErrNeedMoreInput while a
// message is incomplete, and io.EOF once Finish was called and every byte
// has been reported.
func (s *Scanner) Next() (Outcome, error) {
	if s.queued != nil {
		o := *s.queued
		s.queued = nil
		return o, nil
	}
	for {
		switch s.state {
		case Searching:
			if s.Buffered() == 0 {
				return s.awaitInput()
			}
			if !s.locate() {
				return s.awaitInput()
			}
			total, err := protocol.Peek(s.unread(), s.framing)
			switch {
			case err == nil:
				s.want = total
				s.state = HeaderParsed
			case wire.IsRecoverable(err):
				if !s.finished {
					return Outcome{}, ErrNeedMoreInput
				}
				s.reason = "truncated header"
				s.state = Resync
			default:
				s.reason = err.Error()
				s.state = Resync
			}

		case HeaderParsed:
			if s.Buffered() < s.want {
				if !s.finished {
					return Outcome{}, ErrNeedMoreInput
				}
				s.reason = "truncated message"
				s.state = Resync
				continue
			}
			o, err := s.decode()
			if err != nil {
				s.reason = err.Error()
				s.state = Resync
				continue
			}
			s.state = Emit
			s.queued = &o

		case Emit:
			s.state = Searching
			msg := *s.queued
			s.queued = nil
			s.consume(msg.Length)
			if s.pending != nil {
				s.queued = &msg
				return s.flush(), nil
			}
			return msg, nil

		case Resync:
			s.skip(1, s.reason)
			s.state = Searching
		}
	}
}

func (s *Scanner) decode() (Outcome, error) {
	start := time.Now()
	m, n, err := protocol.Decode(s.unread()[:s.want], s.framing)
	if err != nil {
		return Outcome{}, err
	}
	s.metrics.MessageDecoded(n, time.Since(start))
	return Outcome{Kind: KindMessage, Offset: s.Offset(), Length: n, Message: m}, nil
}

// locate advances the cursor to the next candidate start, moving skipped
// bytes into the pending span. It reports false when no candidate can start
// in the buffered bytes.
func (s *Scanner) locate() bool {
	if s.framing != protocol.FramingStorage {
		return true
	}
	b := s.unread()
	i := header.IndexStorageMagic(b)
	if i < 0 {
		keep := 0
		if !s.finished {
			keep = magicPrefixLen(b)
		}
		s.skip(len(b)-keep, "no storage header")
		return false
	}
	s.skip(i, "no storage header")
	return true
}

func (s *Scanner) awaitInput() (Outcome, error) {
	if !s.finished {
		return Outcome{}, ErrNeedMoreInput
	}
	if s.Buffered() > 0 {
		s.skip(s.Buffered(), "trailing bytes")
	}
	if s.pending != nil {
		return s.flush(), nil
	}
	return Outcome{}, io.EOF
}

// skip moves n bytes from the cursor into the pending corrupt span.
func (s *Scanner) skip(n int, reason string) {
	if n <= 0 {
		return
	}
	if s.pending == nil {
		s.pending = &Span{Offset: s.Offset(), Reason: reason}
	}
	s.pending.Length += n
	s.consume(n)
}

func (s *Scanner) flush() Outcome {
	span := *s.pending
	s.pending = nil
	s.metrics.CorruptSpan(span.Length)
	s.log.Debug().
		Int64("offset", span.Offset).
		Int("length", span.Length).
		Str("reason", span.Reason).
		Msg("scan: corrupt span")
	return Outcome{Kind: KindCorrupt, Offset: span.Offset, Length: span.Length, Span: span}
}

func (s *Scanner) consume(n int) {
	s.r += n
	if s.r == len(s.buf) {
		s.base += int64(s.r)
		s.buf = s.buf[:0]
		s.r = 0
	}
}

// compact drops consumed bytes once they make up half the buffer.
func (s *Scanner) compact() {
	if s.r == 0 || s.r < len(s.buf)/2 {
		return
	}
	n := copy(s.buf, s.buf[s.r:])
	s.buf = s.buf[:n]
	s.base += int64(s.r)
	s.r = 0
}

func (s *Scanner) unread() []byte { return s.buf[s.r:] }

// magicPrefixLen is the length of the longest suffix of b that could be the
// start of a storage magic split across feeds.
func magicPrefixLen(b []byte) int {
	for n := min(len(b), len(header.StorageMagic)-1); n > 0; n-- {
		if string(b[len(b)-n:]) == string(header.StorageMagic[:n]) {
			return n
		}
	}
	return 0
}
