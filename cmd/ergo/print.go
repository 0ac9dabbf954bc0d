package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
)

func printReport(out io.Writer, r analysis.Report) {
	fmt.Fprintf(out, "Mode: %s   Riding style: %s\n\n", r.Mode, r.RidingStyle)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	bikes := []analysis.BikeReport{r.Primary}
	if r.Secondary != nil {
		bikes = append(bikes, *r.Secondary)
	}

	fmt.Fprint(tw, "\t")
	for _, b := range bikes {
		fmt.Fprintf(tw, "%s\t", b.Label)
	}
	if r.Deltas != nil {
		fmt.Fprint(tw, "delta\t")
	}
	fmt.Fprintln(tw)

	row := func(name string, pick func(analysis.BikeReport) string) {
		fmt.Fprintf(tw, "%s\t", name)
		for _, b := range bikes {
			fmt.Fprintf(tw, "%s\t", pick(b))
		}
	}

	row("seat-peg", func(b analysis.BikeReport) string { return mm(b.Distances.SeatPeg) })
	endRow(tw, r, nil)
	row("seat-bar", func(b analysis.BikeReport) string { return mm(b.Distances.SeatBar) })
	endRow(tw, r, nil)
	row("peg-bar", func(b analysis.BikeReport) string { return mm(b.Distances.PegBar) })
	endRow(tw, r, nil)

	for _, a := range comfort.AngleTypes {
		a := a
		row(string(a), func(b analysis.BikeReport) string {
			res := result(b.Comfort, a)
			return fmt.Sprintf("%s %s", deg(angle(b.Angles, a)), res.Status)
		})
		var d *float64
		if r.Deltas != nil {
			d = angle(*r.Deltas, a)
		}
		endRow(tw, r, d)
	}
	row("overall", func(b analysis.BikeReport) string { return string(b.Comfort.Overall) })
	endRow(tw, r, nil)
	tw.Flush()

	for _, b := range bikes {
		for _, g := range b.Guidance {
			fmt.Fprintf(out, "\n- %s", g)
		}
	}
	fmt.Fprintln(out)
}

func endRow(tw io.Writer, r analysis.Report, delta *float64) {
	if r.Deltas != nil {
		if delta != nil {
			fmt.Fprintf(tw, "%+.1f°\t", *delta)
		} else {
			fmt.Fprint(tw, "\t")
		}
	}
	fmt.Fprintln(tw)
}

func angle(a ergonomics.AngleResult, t comfort.AngleType) *float64 {
	switch t {
	case comfort.Knee:
		return a.Knee
	case comfort.Hip:
		return a.Hip
	case comfort.Back:
		return a.Back
	case comfort.Arm:
		return a.Arm
	}
	return nil
}

func result(s comfort.Summary, t comfort.AngleType) comfort.Result {
	switch t {
	case comfort.Knee:
		return s.Knee
	case comfort.Hip:
		return s.Hip
	case comfort.Back:
		return s.Back
	default:
		return s.Arm
	}
}

func mm(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f mm", v)
}

func deg(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f°", *v)
}
