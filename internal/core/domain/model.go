package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Card tags with dedicated handling.
const (
	TagComment    = "CM"
	TagCommentEnd = "CE"
	TagSymbol     = "SY"
	TagWire       = "GW"
	TagExcitation = "EX"
)

// IsTextCard reports whether cards of the given type carry free-form text instead of params.
func IsTextCard(cardType string) bool {
	switch cardType {
	case TagComment, TagCommentEnd, TagSymbol:
		return true
	}
	return false
}

// ParamKind discriminates the value held by a Param.
type ParamKind int

const (
	// ParamString holds the raw token text.
	ParamString ParamKind = iota
	// ParamInt holds an integer value.
	ParamInt
	// ParamFloat holds a floating-point value.
	ParamFloat
)

// String returns the lower-case kind name.
func (k ParamKind) String() string {
	switch k {
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	default:
		return "string"
	}
}

// Param is one positional card value. Only the field selected by Kind is meaningful.
type Param struct {
	Kind  ParamKind
	Int   int64
	Float float64
	Str   string
}

// IntParam returns an integer Param.
func IntParam(v int64) Param { return Param{Kind: ParamInt, Int: v} }

// FloatParam returns a floating-point Param.
func FloatParam(v float64) Param { return Param{Kind: ParamFloat, Float: v} }

// StringParam returns a raw-token Param.
func StringParam(s string) Param { return Param{Kind: ParamString, Str: s} }

// String renders the param the way it is written back into a deck.
func (p Param) String() string {
	switch p.Kind {
	case ParamInt:
		return strconv.FormatInt(p.Int, 10)
	case ParamFloat:
		return FormatFloat(p.Float)
	default:
		return p.Str
	}
}

// MarshalJSON emits numbers for numeric kinds and strings otherwise.
func (p Param) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ParamInt:
		return []byte(strconv.FormatInt(p.Int, 10)), nil
	case ParamFloat:
		if math.IsInf(p.Float, 0) || math.IsNaN(p.Float) {
			return json.Marshal(FormatFloat(p.Float))
		}
		return []byte(FormatFloat(p.Float)), nil
	default:
		return json.Marshal(p.Str)
	}
}

// UnmarshalJSON restores a Param written by MarshalJSON. Integral JSON numbers
// without a fraction or exponent come back as ParamInt.
func (p *Param) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = StringParam(s)
		return nil
	}
	text := string(data)
	if !strings.ContainsAny(text, ".eE") {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			*p = IntParam(v)
			return nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return err
	}
	*p = FloatParam(v)
	return nil
}

// FormatFloat renders f in shortest round-trip form. Integral values keep a
// trailing ".0" and magnitudes outside [1e-4, 1e16) use exponent notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Card is one parsed deck line. LineNumber and RawContent are fixed at creation.
type Card struct {
	Type       string   `json:"type"`
	LineNumber int      `json:"line_number"`
	RawContent string   `json:"raw_content"`
	Params     []Param  `json:"params"`
	Text       string   `json:"text,omitempty"`
	Errors     []string `json:"errors"`
}

// Valid reports whether the card has no validation errors.
func (c Card) Valid() bool { return len(c.Errors) == 0 }

// ParamStrings returns the string forms of the card's params.
func (c Card) ParamStrings() []string {
	out := make([]string, len(c.Params))
	for i, p := range c.Params {
		out[i] = p.String()
	}
	return out
}

// SymbolTable maps SY names to their numeric values.
type SymbolTable map[string]float64

// Clone returns an independent copy of the table.
func (t SymbolTable) Clone() SymbolTable {
	out := make(SymbolTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// FidelityResult holds the comparison of one original/reconverted card pair.
type FidelityResult struct {
	LineNumber          int     `json:"line_number"`
	Type                string  `json:"type"`
	ActualParams        int     `json:"actual_params"`
	Similarity          float64 `json:"similarity"`
	FieldCountScore     float64 `json:"field_count_score"`
	ValueAlignmentScore float64 `json:"value_alignment_score"`
	OverallScore        float64 `json:"overall_score"`
}

// FidelityReport aggregates the per-card results of a deck comparison.
type FidelityReport struct {
	Results []FidelityResult `json:"results"`
	Mean    float64          `json:"mean"`
	StdDev  float64          `json:"stddev"`
}

// Segment is one straight wire derived from a GW card.
type Segment struct {
	Tag      int        `json:"tag"`
	Segments int        `json:"segments"`
	Start    [3]float64 `json:"start"`
	End      [3]float64 `json:"end"`
	Radius   *float64   `json:"radius"`
	Length   float64    `json:"length"`
}

// FeedPoint is a segment tag referenced by an EX card. Its numbering is
// independent of the wire tags carried by Segment.
type FeedPoint struct {
	SegmentTag int `json:"segment_tag"`
	LineNumber int `json:"line_number"`
}

// Report is the full outcome of analysing one deck.
type Report struct {
	DeckID         string         `json:"deck_id"`
	Name           string         `json:"name,omitempty"`
	LineCount      int            `json:"line_count"`
	CardCount      int            `json:"card_count"`
	Cards          []Card         `json:"cards"`
	Symbols        SymbolTable    `json:"symbols"`
	Errors         []string       `json:"errors"`
	Reconverted    []string       `json:"reconverted"`
	Fidelity       FidelityReport `json:"fidelity"`
	Geometry       []Segment      `json:"geometry"`
	GeometryErrors []string       `json:"geometry_errors"`
	FeedPoints     []FeedPoint    `json:"feed_points"`
	AnalyzedAt     time.Time      `json:"analyzed_at"`
	Duration       time.Duration  `json:"duration"`
}

// Summary condenses a report for listings.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		DeckID:       r.DeckID,
		Name:         r.Name,
		CardCount:    r.CardCount,
		ErrorCount:   len(r.Errors),
		SegmentCount: len(r.Geometry),
		MeanScore:    r.Fidelity.Mean,
		AnalyzedAt:   r.AnalyzedAt,
	}
}

// ReportSummary is the listing form of a stored Report.
type ReportSummary struct {
	DeckID       string    `json:"deck_id"`
	Name         string    `json:"name,omitempty"`
	CardCount    int       `json:"card_count"`
	ErrorCount   int       `json:"error_count"`
	SegmentCount int       `json:"segment_count"`
	MeanScore    float64   `json:"mean_score"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}
