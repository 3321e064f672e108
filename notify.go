package etfflow

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Discord embed colors for a positive, negative or flat day.
const (
	ColorPositive = 0x2ecc71
	ColorNegative = 0xe74c3c
	ColorNeutral  = 0x95a5a6
)

// DefaultMaxFields caps the number of fields shown per embed, to stay well
// within the delivery surface's field limit.
const DefaultMaxFields = 24

// Embed is the presentation payload delivered to the webhook.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// BuildEmbed assembles the notification body for one day's flows. Pure: same
// inputs, same embed.
//
// The total nets every record, shown or not. Records with a nonzero flow are
// shown; when every flow is exactly zero the first six records are shown
// instead, so a day with data never renders an empty message. When more than
// maxFields records qualify, the largest absolute flows win.
func BuildEmbed(title string, flows []FlowRecord, maxFields int) Embed {
	var net float64
	for _, f := range flows {
		net += f.Net
	}

	color := ColorNeutral
	switch {
	case net > 0:
		color = ColorPositive
	case net < 0:
		color = ColorNegative
	}

	shown := make([]FlowRecord, 0, len(flows))
	for _, f := range flows {
		if math.Abs(f.Net) > 0 {
			shown = append(shown, f)
		}
	}
	if len(shown) == 0 {
		shown = append(shown, flows[:min(6, len(flows))]...)
	}
	if maxFields > 0 && len(shown) > maxFields {
		sort.SliceStable(shown, func(i, j int) bool {
			return math.Abs(shown[i].Net) > math.Abs(shown[j].Net)
		})
		shown = shown[:maxFields]
	}

	fields := make([]EmbedField, 0, len(shown))
	for _, f := range shown {
		fields = append(fields, EmbedField{
			Name:   f.Name,
			Value:  fmt.Sprintf("%s %s", indicator(f.Net), SignedMillions(f.Net)),
			Inline: true,
		})
	}

	return Embed{
		Title:  fmt.Sprintf("%s ETF Net Flows ($m)", title),
		Color:  color,
		Fields: fields,
		Footer: &EmbedFooter{Text: fmt.Sprintf("Net: %s • Source: SoSoValue API", SignedMillions(net))},
	}
}

// indicator returns the qualitative marker rendered next to each value.
func indicator(v float64) string {
	switch {
	case v > 0:
		return "🟢"
	case v < 0:
		return "🔴"
	default:
		return "⚪"
	}
}

// SignedMillions formats a flow as an explicitly signed, comma-grouped figure
// in millions, e.g. "+1,234.5 $m".
func SignedMillions(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', 1, 64)
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + groupThousands(s) + " $m"
}

// groupThousands inserts comma separators into the integer part of a plain
// decimal string.
func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
