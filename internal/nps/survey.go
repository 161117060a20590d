package nps

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"npsbridge/internal/zendesk"
)

var (
	// ErrInvalidJSON means the body is not a single well-formed JSON value.
	ErrInvalidJSON = errors.New("invalid_json")

	// ErrMissingFields means ticketId is empty or score is not a number.
	ErrMissingFields = errors.New("ticketId_and_score_required")
)

// Tags is the fixed tag set applied to every updated ticket.
var Tags = []string{"nps_web", "nps_form"}

// Submission is a validated survey response.
type Submission struct {
	TicketID string
	Score    float64
	Why      string
	Improve  string
}

// FieldIDs maps survey answers to Zendesk custom field ids. A nil id skips
// the field.
type FieldIDs struct {
	NPS     *int64
	Why     *int64
	Improve *int64
}

// ParseSubmission decodes and validates a survey body. An empty body is
// read as "{}". A body holding valid JSON that is not an object is treated
// like an object with no fields.
func ParseSubmission(raw []byte) (Submission, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Submission{}, ErrInvalidJSON
	}
	if _, err := dec.Token(); err != io.EOF {
		return Submission{}, ErrInvalidJSON
	}

	fields, _ := doc.(map[string]any)

	ticketID, ok := ticketIDString(fields["ticketId"])
	if !ok {
		return Submission{}, ErrMissingFields
	}
	score, ok := finiteNumber(fields["score"])
	if !ok {
		return Submission{}, ErrMissingFields
	}

	return Submission{
		TicketID: ticketID,
		Score:    score,
		Why:      textValue(fields["why"]),
		Improve:  textValue(fields["improve"]),
	}, nil
}

// CommentBody renders the internal note posted on the ticket.
func (s Submission) CommentBody() string {
	var b strings.Builder
	b.WriteString("NPS: " + formatNumber(s.Score) + "/10\n")
	if s.Why != "" {
		b.WriteString("Motivo: " + s.Why + "\n")
	}
	if s.Improve != "" {
		b.WriteString("Melhorias: " + s.Improve + "\n")
	}
	b.WriteString("Origem: NPS")
	return b.String()
}

// TicketUpdate builds the Zendesk request body for s.
func (s Submission) TicketUpdate(ids FieldIDs) zendesk.TicketUpdate {
	var custom []zendesk.CustomField
	if ids.NPS != nil {
		custom = append(custom, zendesk.CustomField{ID: *ids.NPS, Value: s.Score})
	}
	if ids.Why != nil {
		custom = append(custom, zendesk.CustomField{ID: *ids.Why, Value: s.Why})
	}
	if ids.Improve != nil {
		custom = append(custom, zendesk.CustomField{ID: *ids.Improve, Value: s.Improve})
	}

	return zendesk.TicketUpdate{Ticket: zendesk.Ticket{
		Comment:      zendesk.Comment{Body: s.CommentBody(), Public: false},
		CustomFields: custom,
		Tags:         Tags,
	}}
}

func ticketIDString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		f, ok := finiteNumber(id)
		if !ok || f == 0 {
			return "", false
		}
		return formatNumber(f), true
	}
	return "", false
}

func finiteNumber(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// textValue coerces an optional answer to text. Absent, null, false, zero
// and "" all read as "".
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return ""
	case json.Number:
		if f, ok := finiteNumber(t); ok {
			if f == 0 {
				return ""
			}
			return formatNumber(f)
		}
		return t.String()
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// formatNumber renders f the way a browser prints a number: shortest
// round-trip digits, -0 as "0", and exponent form ("1e+21", "1.5e-7")
// below 1e-6 and from 1e21 in magnitude.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}
