// Package renderer turns flow histories into a chart artifact. The output is
// a self-contained SVG document, accepted by Discord as a regular file
// attachment.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/etfflow/sosovalue"
)

// A Line is one named series of the chart.
type Line struct {
	Label   string
	History sosovalue.History
}

const (
	width   = 880
	height  = 496
	marginL = 64
	marginR = 16
	marginT = 40
	marginB = 32
)

var palette = []string{"#f7931a", "#627eea", "#2ecc71", "#e74c3c"}

// Cumulative renders the cumulative net inflow of every line as an SVG
// document, values in billions of USD. Empty lines are skipped; with no data
// at all the chart still renders, with axes only.
func Cumulative(title string, lines ...Line) []byte {
	var minV, maxV float64
	var minD, maxD int64
	first := true
	for _, l := range lines {
		for _, pt := range l.History {
			v := pt.Cumulative / 1e9
			day := dayNumber(pt)
			if first {
				minV, maxV, minD, maxD = v, v, day, day
				first = false
				continue
			}
			minV, maxV = min(minV, v), max(maxV, v)
			minD, maxD = min(minD, day), max(maxD, day)
		}
	}
	if first || minV == maxV {
		maxV = minV + 1
	}
	if minD == maxD {
		maxD = minD + 1
	}

	x := func(day int64) float64 {
		return marginL + float64(day-minD)/float64(maxD-minD)*(width-marginL-marginR)
	}
	y := func(v float64) float64 {
		return height - marginB - (v-minV)/(maxV-minV)*(height-marginT-marginB)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", width, height)
	fmt.Fprintf(&b, `<text x="%d" y="24" font-family="sans-serif" font-size="16">%s</text>`+"\n", marginL, escape(title))

	// axes
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#888"/>`+"\n", marginL, marginT, marginL, height-marginB)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#888"/>`+"\n", marginL, height-marginB, width-marginR, height-marginB)
	fmt.Fprintf(&b, `<text x="4" y="%d" font-family="sans-serif" font-size="11">%.1f</text>`+"\n", marginT+4, maxV)
	fmt.Fprintf(&b, `<text x="4" y="%d" font-family="sans-serif" font-size="11">%.1f</text>`+"\n", height-marginB, minV)

	for i, l := range lines {
		if len(l.History) == 0 {
			continue
		}
		color := palette[i%len(palette)]
		var points []string
		for _, pt := range l.History {
			points = append(points, fmt.Sprintf("%.1f,%.1f", x(dayNumber(pt)), y(pt.Cumulative/1e9)))
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`+"\n", color, strings.Join(points, " "))
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="12" fill="%s">%s (cum $B)</text>`+"\n",
			marginL+8, marginT+16*(i+1), color, escape(l.Label))
	}

	// date range label
	if !first {
		var firstDate, lastDate string
		for _, l := range lines {
			if len(l.History) == 0 {
				continue
			}
			d0, d1 := l.History[0].Date.String(), l.History[len(l.History)-1].Date.String()
			if firstDate == "" || d0 < firstDate {
				firstDate = d0
			}
			if d1 > lastDate {
				lastDate = d1
			}
		}
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="11">%s</text>`+"\n", marginL, height-8, firstDate)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="sans-serif" font-size="11" text-anchor="end">%s</text>`+"\n", width-marginR, height-8, lastDate)
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// escape makes a label safe to embed in the SVG markup.
func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// dayNumber maps a point's date to a day count usable as an x coordinate.
func dayNumber(pt sosovalue.HistoryPoint) int64 {
	return pt.Date.Unix() / 86_400
}
