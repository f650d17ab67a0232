package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/payload"
	"github.com/danmuck/dltcore/internal/protocol/scan"
)

type printer struct {
	w    io.Writer
	enc  *json.Encoder
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &printer{w: w, enc: enc, json: asJSON}
}

type record struct {
	Offset    int64    `json:"offset"`
	Length    int      `json:"length"`
	Kind      string   `json:"kind"`
	Reason    string   `json:"reason,omitempty"`
	Time      string   `json:"time,omitempty"`
	Ecu       []string `json:"ecu,omitempty"`
	Counter   uint8    `json:"counter"`
	App       string   `json:"app,omitempty"`
	Context   string   `json:"ctx,omitempty"`
	Type      string   `json:"type,omitempty"`
	Subtype   string   `json:"subtype,omitempty"`
	Args      []string `json:"args,omitempty"`
	MessageID *uint32  `json:"message_id,omitempty"`
	Service   string   `json:"service,omitempty"`
	Status    string   `json:"status,omitempty"`
	RawHex    string   `json:"raw_hex,omitempty"`
}

func (p *printer) print(o scan.Outcome) error {
	rec := newRecord(o)
	if p.json {
		return p.enc.Encode(rec)
	}
	_, err := fmt.Fprintln(p.w, rec.text())
	return err
}

func newRecord(o scan.Outcome) record {
	rec := record{Offset: o.Offset, Length: o.Length, Kind: o.Kind.String()}
	if o.Kind != scan.KindMessage {
		rec.Reason = o.Span.Reason
		return rec
	}
	m := o.Message
	if m.Storage != nil {
		rec.Time = m.Storage.Time().Format("2006-01-02T15:04:05.000000Z07:00")
	}
	for _, id := range m.EcuIDs() {
		rec.Ecu = append(rec.Ecu, id.String())
	}
	rec.Counter = m.Header.Counter
	if ext := m.Extended; ext != nil {
		rec.App = ext.AppID.String()
		rec.Context = ext.ContextID.String()
		rec.Type = ext.Type.String()
		rec.Subtype = subtypeName(*ext)
	}
	switch p := m.Payload.(type) {
	case payload.Verbose:
		for _, arg := range p.Arguments {
			rec.Args = append(rec.Args, arg.String())
		}
	case payload.NonVerbose:
		id := p.MessageID
		rec.MessageID = &id
		rec.RawHex = hex.EncodeToString(p.Raw)
	case payload.Control:
		if p.Kind != header.ControlTime {
			rec.Service = p.ServiceID.String()
		}
		if p.Kind == header.ControlResponse {
			rec.Status = p.Status.String()
		}
		rec.RawHex = hex.EncodeToString(p.Data)
	}
	return rec
}

func subtypeName(ext header.ExtendedHeader) string {
	if lvl, ok := ext.LogLevel(); ok {
		return lvl.String()
	}
	if ct, ok := ext.ControlType(); ok {
		switch ct {
		case header.ControlRequest:
			return "request"
		case header.ControlResponse:
			return "response"
		case header.ControlTime:
			return "time"
		}
	}
	return fmt.Sprint(ext.Subtype)
}

func (r record) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s len=%d", r.Offset, r.Kind, r.Length)
	if r.Kind != scan.KindMessage.String() {
		fmt.Fprintf(&b, " reason=%q", r.Reason)
		return b.String()
	}
	if len(r.Ecu) > 0 {
		fmt.Fprintf(&b, " ecu=%s", strings.Join(r.Ecu, "/"))
	}
	if r.App != "" || r.Context != "" {
		fmt.Fprintf(&b, " app=%s ctx=%s", r.App, r.Context)
	}
	if r.Type != "" {
		fmt.Fprintf(&b, " %s/%s", r.Type, r.Subtype)
	}
	if r.MessageID != nil {
		fmt.Fprintf(&b, " id=%d", *r.MessageID)
	}
	if r.Service != "" {
		fmt.Fprintf(&b, " service=%s", r.Service)
	}
	if r.Status != "" {
		fmt.Fprintf(&b, " status=%s", r.Status)
	}
	if len(r.Args) > 0 {
		fmt.Fprintf(&b, " %s", strings.Join(r.Args, " "))
	}
	if r.RawHex != "" {
		fmt.Fprintf(&b, " raw=%s", r.RawHex)
	}
	return b.String()
}
