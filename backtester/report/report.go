package report

import (
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/GuQiangJS/finance-tools-py/backtester/common"
	"github.com/GuQiangJS/finance-tools-py/backtester/eventtypes/execution"
	"github.com/shopspring/decimal"
)

const reportTemplate = `Period: {{date .Start}} ~ {{date .End}} ({{.Bars}} bars)
Trades: {{.Trades}} (buys and sells counted separately)
Initial cash: {{money .InitialCash}}
Available cash: {{money .AvailableCash}}
Total assets: {{money .TotalAssets}}
Change: {{pct .Change}}
Total commission: {{money .TotalCommission}}
Total tax: {{money .TotalTax}}
{{- if .Summary}}
Closed pairs: {{.Summary.Pairs}} won {{.Summary.Wins}} lost {{.Summary.Losses}} win rate {{pct .Summary.WinRate}}
{{- end}}
{{- if .ShowHold}}
Holdings:
{{- if .Positions}}
code	amount	cost	price	value
{{- range .Positions}}
{{.Instrument}}	{{.Quantity}}	{{money .CostBasis}}	{{money .LastPrice}}	{{money .MarketValue}}
{{- end}}
{{- else}}
none
{{- end}}
{{- end}}
{{- if .ShowHistory}}
History:
{{- if .History}}
date	code	towards	price	amount	commission	tax	total	cash
{{- range .History}}
{{date .Time}}	{{.Instrument}}	{{towards .}}	{{.Price}}	{{abs .Quantity}}	{{money .Commission}}	{{money .Tax}}	{{money .Total}}	{{money .CashAfter}}
{{- end}}
{{- else}}
none
{{- end}}
{{- end}}
`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"date":    common.FormatTime,
	"money":   func(d decimal.Decimal) string { return d.StringFixed(2) },
	"pct":     func(d decimal.Decimal) string { return d.Mul(common.OneHundred).StringFixed(2) + "%" },
	"abs":     func(d decimal.Decimal) decimal.Decimal { return d.Abs() },
	"towards": towards,
}).Parse(reportTemplate))

func towards(e execution.Execution) string {
	t := strings.ToLower(e.Direction.String())
	if e.Synthetic {
		return t + " (initial)"
	}
	return t
}

// DefaultOptions shows every section
func DefaultOptions() Options {
	return Options{ShowHistory: true, ShowHold: true}
}

// Change returns the relative change from initial cash to total assets
func (d *Data) Change() decimal.Decimal {
	if d.InitialCash.IsZero() {
		return decimal.Zero
	}
	return d.TotalAssets.Sub(d.InitialCash).Div(d.InitialCash)
}

// Render renders the report as aligned plain text
func Render(d *Data, o Options) (string, error) {
	if d == nil {
		return "", errNilData
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	err := tmpl.Execute(w, struct {
		*Data
		Options
	}{d, o})
	if err != nil {
		return "", err
	}
	if err = w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
