package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
	"github.com/baditaflorin/go_nec_fidelity/pkg/deck"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatReport renders the text summary of a report.
//
//	dipole.nec  9 cards / 10 lines  fidelity 1.0000 ±0.0000  1 segments
//	  Line 4: Expected 6-6 params, got 5
func formatReport(r *deck.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %d cards / %d lines  fidelity %.4f ±%.4f  %d segments\n",
		displayName(r.Name, r.DeckID), r.CardCount, r.LineCount,
		r.Fidelity.Mean, r.Fidelity.StdDev, len(r.Geometry))
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "  %s\n", e)
	}
	for _, e := range r.GeometryErrors {
		fmt.Fprintf(&sb, "  %s\n", e)
	}
	if len(r.FeedPoints) > 0 {
		tags := make([]string, len(r.FeedPoints))
		for i, fp := range r.FeedPoints {
			tags[i] = fmt.Sprint(fp.SegmentTag)
		}
		fmt.Fprintf(&sb, "  feed segments: %s\n", strings.Join(tags, ", "))
	}
	return sb.String()
}

// formatFidelity lists the cards that did not survive the round trip unchanged.
func formatFidelity(w io.Writer, results []deck.FidelityResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tTYPE\tPARAMS\tSIMILARITY\tCOUNT\tALIGN\tOVERALL")
	for _, r := range results {
		if r.OverallScore == 1 {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.LineNumber, r.Type, r.ActualParams,
			r.Similarity, r.FieldCountScore, r.ValueAlignmentScore, r.OverallScore)
	}
	return tw.Flush()
}

func formatSymbols(w io.Writer, table deck.SymbolTable) {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %s\n", name, domain.FormatFloat(table[name]))
	}
}

func formatSegments(w io.Writer, segments []deck.Segment) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tSEGS\tSTART\tEND\tRADIUS\tLENGTH")
	for _, s := range segments {
		radius := "-"
		if s.Radius != nil {
			radius = domain.FormatFloat(*s.Radius)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			s.Tag, s.Segments, formatPoint(s.Start), formatPoint(s.End), radius, domain.FormatFloat(s.Length))
	}
	return tw.Flush()
}

func formatPoint(p [3]float64) string {
	return fmt.Sprintf("(%s, %s, %s)", domain.FormatFloat(p[0]), domain.FormatFloat(p[1]), domain.FormatFloat(p[2]))
}

func formatSummaries(w io.Writer, summaries []deck.ReportSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCARDS\tERRORS\tSEGMENTS\tFIDELITY\tANALYZED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.4f\t%s\n",
			shortID(s.DeckID), s.Name, s.CardCount, s.ErrorCount, s.SegmentCount, s.MeanScore,
			s.AnalyzedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return shortID(id)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
