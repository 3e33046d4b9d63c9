package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Layout controls the presentation of exported reports. Figures are never affected.
type Layout struct {
	CompanyName    string            `yaml:"company_name"`
	Title          string            `yaml:"title"`
	CurrencySymbol string            `yaml:"currency_symbol"`
	SheetName      string            `yaml:"sheet_name"`
	Labels         map[string]string `yaml:"labels,omitempty"`       // column key -> header text
	HideColumns    []string          `yaml:"hide_columns,omitempty"` // column keys
}

func DefaultLayout() Layout {
	return Layout{
		Title:          "Payroll report",
		CurrencySymbol: "$",
		SheetName:      "Payroll",
	}
}

// LoadLayout reads a YAML layout file. Fields it leaves out keep their defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read export layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse export layout YAML: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("invalid export layout: %w", err)
	}
	return layout, nil
}

func (l Layout) Validate() error {
	if strings.TrimSpace(l.SheetName) == "" {
		return fmt.Errorf("sheet_name must not be empty")
	}
	if len(l.SheetName) > 31 {
		return fmt.Errorf("sheet_name must be at most 31 characters")
	}
	known := make(map[string]bool, len(allColumns))
	for _, c := range allColumns {
		known[c.Key] = true
	}
	for key := range l.Labels {
		if !known[key] {
			return fmt.Errorf("labels: unknown column %q", key)
		}
	}
	for _, key := range l.HideColumns {
		if !known[key] {
			return fmt.Errorf("hide_columns: unknown column %q", key)
		}
		if key == "date" {
			return fmt.Errorf("hide_columns: the date column cannot be hidden")
		}
	}
	return nil
}

type columnKind int

const (
	kindText columnKind = iota
	kindMinutes
	kindMoney
)

// Column is one column of the exported table.
type Column struct {
	Key   string
	Label string
	kind  columnKind
	width float64 // relative PDF width
}

var allColumns = []Column{
	{Key: "date", Label: "Date", kind: kindText, width: 18},
	{Key: "entry", Label: "Entry", kind: kindText, width: 11},
	{Key: "exit", Label: "Exit", kind: kindText, width: 11},
	{Key: "base_pay", Label: "Base pay", kind: kindMoney, width: 16},
	{Key: "daytime_overtime_minutes", Label: "Day OT (min)", kind: kindMinutes, width: 14},
	{Key: "daytime_overtime_pay", Label: "Day OT pay", kind: kindMoney, width: 15},
	{Key: "nighttime_overtime_minutes", Label: "Night OT (min)", kind: kindMinutes, width: 15},
	{Key: "nighttime_overtime_pay", Label: "Night OT pay", kind: kindMoney, width: 16},
	{Key: "deficit_minutes", Label: "Deficit (min)", kind: kindMinutes, width: 14},
	{Key: "extras_pay", Label: "Extras", kind: kindMoney, width: 15},
	{Key: "deductions", Label: "Deductions", kind: kindMoney, width: 16},
	{Key: "net_pay", Label: "Net pay", kind: kindMoney, width: 16},
	{Key: "advances", Label: "Advances", kind: kindMoney, width: 16},
	{Key: "net_after_advances", Label: "Net after adv.", kind: kindMoney, width: 18},
	{Key: "observation", Label: "Observation", kind: kindText, width: 40},
	{Key: "advance_notes", Label: "Advance notes", kind: kindText, width: 30},
}

// Columns returns the visible columns with their configured labels.
func (l Layout) Columns() []Column {
	hidden := make(map[string]bool, len(l.HideColumns))
	for _, key := range l.HideColumns {
		hidden[key] = true
	}

	cols := make([]Column, 0, len(allColumns))
	for _, c := range allColumns {
		if hidden[c.Key] {
			continue
		}
		if label, ok := l.Labels[c.Key]; ok && strings.TrimSpace(label) != "" {
			c.Label = label
		}
		cols = append(cols, c)
	}
	return cols
}

// rowValue returns a string, an int (minutes) or a decimal (money).
func rowValue(key string, r report.DerivedReportRow) interface{} {
	switch key {
	case "date":
		return r.Date
	case "entry":
		return r.EntryClock
	case "exit":
		return r.ExitClock
	case "base_pay":
		return r.BasePay
	case "daytime_overtime_minutes":
		return r.DaytimeOvertimeMinutes
	case "daytime_overtime_pay":
		return r.DaytimeOvertimePay
	case "nighttime_overtime_minutes":
		return r.NighttimeOvertimeMinutes
	case "nighttime_overtime_pay":
		return r.NighttimeOvertimePay
	case "deficit_minutes":
		return r.DeficitMinutes
	case "extras_pay":
		return r.ExtrasPay
	case "deductions":
		return r.Deductions
	case "net_pay":
		return r.NetPayForDay
	case "advances":
		return r.TotalAdvancesForDay
	case "net_after_advances":
		return r.NetAfterAdvances
	case "observation":
		return r.Observation
	case "advance_notes":
		return r.AdvanceNotes
	}
	return ""
}

// totalValue returns the footer value of a column, or nil when the column has no total.
func totalValue(key string, t report.ReportTotals) interface{} {
	switch key {
	case "date":
		return "Total"
	case "base_pay":
		return t.BasePay
	case "daytime_overtime_minutes":
		return t.DaytimeOvertimeMinutes
	case "nighttime_overtime_minutes":
		return t.NighttimeOvertimeMinutes
	case "deficit_minutes":
		return t.DeficitMinutes
	case "extras_pay":
		return t.ExtrasPay
	case "deductions":
		return t.Deductions
	case "net_pay":
		return t.NetPay
	case "advances":
		return t.Advances
	case "net_after_advances":
		return t.NetAfterAdvances
	}
	return nil
}

// formatMoney renders an amount with two decimals and the layout's currency symbol.
func (l Layout) formatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + l.CurrencySymbol + d.Neg().StringFixed(2)
	}
	return l.CurrencySymbol + d.StringFixed(2)
}

func (l Layout) heading(s report.ReportSnapshot) string {
	name := s.EmployeeName
	if name == "" {
		name = s.EmployeeID
	}
	return fmt.Sprintf("%s: %s, %s to %s", l.Title, name, s.StartDate, s.EndDate)
}
