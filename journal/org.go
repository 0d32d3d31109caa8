package journal

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/tradejournal/position"
)

var orgFuncs = template.FuncMap{
	"money":    money,
	"optMoney": optMoney,
	"qty":      qty,
	"stamp":    stamp,
	"short":    shortID,
	"upper":    func(s position.Status) string { return strings.ToUpper(string(s)) },
	"orgDate": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 Mon 15:04")
	},
	"day": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	},
	"cell": func(s string) string { return strings.ReplaceAll(s, "|", "/") },
}

// orgTemplate keeps facts in the PROPERTIES drawer so they stay searchable,
// and the narrative in subheadings.
const orgTemplate = `* {{upper .Valuation.Status}} {{.Position.Symbol}} {{.Position.Strategy}} ({{short .Position.ID}})
:PROPERTIES:
:ID:            {{.Position.ID}}
:SYMBOL:        {{.Position.Symbol}}
:STRATEGY:      {{.Position.Strategy}}
:CREATED:       [{{orgDate .Position.CreatedAt}}]
:TARGET_ENTRY:  {{money .Position.TargetEntryPrice}}
:TARGET_QTY:    {{qty .Position.TargetQuantity}}
:PROFIT_TARGET: {{money .Position.ProfitTarget}}
:STOP_LOSS:     {{money .Position.StopLoss}}
:BASIS:         {{.Position.PriceBasis}}
{{- if .Position.Strategy.IsOption}}
:CONTRACT:      {{.Position.OptionSymbol}}
:STRIKE:        {{money .Position.StrikePrice}}
:EXPIRATION:    {{day .Position.ExpirationDate}}
{{- end}}
:OPEN_QTY:      {{qty .Valuation.OpenQuantity}}
:AVG_COST:      {{money .Valuation.AverageCost}}
:COST_BASIS:    {{money .Valuation.CostBasis}}
:REALIZED_PL:   {{money .Valuation.RealizedPnL}}
:UNREALIZED_PL: {{optMoney .Valuation.UnrealizedPnL}}
:END:

** Thesis
{{if .Position.Thesis}}{{.Position.Thesis}}{{else}}- none{{end}}

** Trades
{{- if .Position.Trades}}
| Time | Type | Qty | Price | Instrument | Notes |
|------+------+-----+-------+------------+-------|
{{- range .Position.Trades}}
| {{stamp .Timestamp}} | {{.Type}} | {{qty .Quantity}} | {{money .Price}} | {{.Underlying}} | {{cell .Notes}} |
{{- end}}
{{- else}}
- none yet
{{- end}}

** Journal
{{- range .Entries}}
*** {{.EntryType}} [{{orgDate .CreatedAt}}]{{if .TradeID}} trade {{short .TradeID}}{{end}}
{{- range .Fields}}
- {{.Name}}: {{.Response}}
{{- end}}
{{- else}}
- nothing written yet
{{- end}}
`

var orgTmpl = template.Must(template.New("position").Funcs(orgFuncs).Parse(orgTemplate))

// FormatPositionOrg renders one position as an Org-mode subtree.
func FormatPositionOrg(r Record) (string, error) {
	var buf bytes.Buffer
	if err := orgTmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render position %s: %w", r.Position.ID, err)
	}
	return buf.String(), nil
}

// WriteOrg writes every record separated by blank lines.
func WriteOrg(w io.Writer, records []Record) error {
	for i, r := range records {
		s, err := FormatPositionOrg(r)
		if err != nil {
			return err
		}
		if i > 0 {
			s = "\n" + s
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}
