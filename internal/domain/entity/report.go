package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the date format the reporting API expects.
const DateLayout = "2006-01-02"

// Measure descreve uma dimensão ou métrica do catálogo do Cloudability.
type Measure struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	DataType string `json:"data_type"`
}

// Measures is the catalogue returned by the measures endpoint.
type Measures []Measure

// ByName looks a measure up by its API name.
func (m Measures) ByName(name string) (Measure, bool) {
	for _, measure := range m {
		if measure.Name == name {
			return measure, true
		}
	}
	return Measure{}, false
}

// NameFromLabel retorna o nome da medida com o rótulo informado.
func (m Measures) NameFromLabel(label string) (string, bool) {
	for _, measure := range m {
		if measure.Label == label {
			return measure.Name, true
		}
	}
	return "", false
}

// FilterOperators são os operadores aceitos pelo endpoint de custos v3.
var FilterOperators = []string{
	"!=@", // does not contain
	"!=",
	"<=",
	"<",
	"=@", // contains
	"[]!=",
	"[]=",
	"==",
	">",
	"===",
	"!==",
	">=",
}

// Filter restricts the report to rows where Field compares to Value.
type Filter struct {
	Field    string `json:"field" yaml:"field" toml:"field"`
	Operator string `json:"operator" yaml:"operator" toml:"operator"`
	Value    string `json:"value" yaml:"value" toml:"value"`
}

func isFilterOperator(op string) bool {
	for _, known := range FilterOperators {
		if known == op {
			return true
		}
	}
	return false
}

// ParseFilter splits an expression such as "vendor==AWS" at the first operator,
// preferring the longest operator that matches at that position.
func ParseFilter(expr string) (Filter, error) {
	ops := make([]string, len(FilterOperators))
	copy(ops, FilterOperators)
	sort.SliceStable(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })

	for i := 1; i < len(expr); i++ {
		for _, op := range ops {
			if strings.HasPrefix(expr[i:], op) {
				return Filter{
					Field:    strings.TrimSpace(expr[:i]),
					Operator: op,
					Value:    strings.TrimSpace(expr[i+len(op):]),
				}, nil
			}
		}
	}
	return Filter{}, fmt.Errorf("filter %q has no supported operator", expr)
}

// Encode retorna o filtro no formato do parâmetro "filters" da API.
func (f Filter) Encode() (string, error) {
	if f.Field == "" {
		return "", fmt.Errorf("filter on %q has an empty field", f.Value)
	}
	if !isFilterOperator(f.Operator) {
		return "", fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
	return f.Field + f.Operator + f.Value, nil
}

// String implements fmt.Stringer.
func (f Filter) String() string {
	return f.Field + f.Operator + f.Value
}

// ReportRequest describes one cost report query.
type ReportRequest struct {
	Dimensions []string
	Metrics    []string
	Filters    []Filter
	// Mappings renames result fields, keyed by measure name.
	Mappings map[string]string
	Days     int
}

// Columns returns the declared schema of the report: dimensions first, then
// metrics, after renaming.
func (r ReportRequest) Columns() []string {
	cols := make([]string, 0, len(r.Dimensions)+len(r.Metrics))
	for _, name := range append(append([]string{}, r.Dimensions...), r.Metrics...) {
		if mapped, ok := r.Mappings[name]; ok && mapped != "" {
			name = mapped
		}
		cols = append(cols, name)
	}
	return cols
}

// Resolve troca rótulos por nomes de medidas usando o catálogo. Referências que
// já são nomes válidos são mantidas. Mapeamentos para medidas que não fazem
// parte do relatório são descartados.
func (r ReportRequest) Resolve(measures Measures) (ReportRequest, error) {
	resolve := func(ref string) (string, error) {
		if _, ok := measures.ByName(ref); ok {
			return ref, nil
		}
		if name, ok := measures.NameFromLabel(ref); ok {
			return name, nil
		}
		return "", fmt.Errorf("unknown measure %q", ref)
	}

	out := ReportRequest{Days: r.Days, Mappings: map[string]string{}}
	requested := map[string]bool{}

	for _, ref := range r.Dimensions {
		name, err := resolve(ref)
		if err != nil {
			return ReportRequest{}, fmt.Errorf("dimension: %w", err)
		}
		out.Dimensions = append(out.Dimensions, name)
		requested[name] = true
	}
	for _, ref := range r.Metrics {
		name, err := resolve(ref)
		if err != nil {
			return ReportRequest{}, fmt.Errorf("metric: %w", err)
		}
		out.Metrics = append(out.Metrics, name)
		requested[name] = true
	}
	for _, f := range r.Filters {
		name, err := resolve(f.Field)
		if err != nil {
			return ReportRequest{}, fmt.Errorf("filter: %w", err)
		}
		f.Field = name
		if _, err := f.Encode(); err != nil {
			return ReportRequest{}, err
		}
		out.Filters = append(out.Filters, f)
	}
	for ref, column := range r.Mappings {
		name, err := resolve(ref)
		if err != nil || !requested[name] {
			continue
		}
		out.Mappings[name] = column
	}

	return out, nil
}

// Window is the trailing reporting period.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window [now - days, now] in UTC.
func NewWindow(now time.Time, days int) Window {
	end := now.UTC()
	return Window{
		Start: end.AddDate(0, 0, -days),
		End:   end,
	}
}

// StartDate formats the window start for the API.
func (w Window) StartDate() string {
	return w.Start.Format(DateLayout)
}

// EndDate formats the window end for the API.
func (w Window) EndDate() string {
	return w.End.Format(DateLayout)
}
