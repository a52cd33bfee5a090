package entity

// FieldKind tells the filler which interaction a field needs.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldDropdown FieldKind = "dropdown"
)

// Strategy identifies which heuristic ended up locating/filling a field.
type Strategy string

const (
	StrategyExactID       Strategy = "exact_id"
	StrategyCSSSelector   Strategy = "css_selector"
	StrategyLabelText     Strategy = "label_text"
	StrategyPositional    Strategy = "positional"
	StrategyDropdownText  Strategy = "dropdown_visible_text"
	StrategyDropdownValue Strategy = "dropdown_value"
)

// FieldSpec describes one logical form field and how to find it on an
// uncontrolled page. Immutable during a run: the provider table supplies
// the locator half, the caller supplies Value.
type FieldSpec struct {
	Name       string
	Label      string
	Value      string
	Kind       FieldKind
	ExactID    string   // id/name attribute for the exact lookup, empty = skip
	Selectors  []string // CSS selectors, tried in order
	LabelTexts []string // case-insensitive substrings matched against label text
	Ordinal    int      // 1-based position among generic text inputs, 0 = no positional fallback
	Critical   bool
}

// WithValue returns a copy of the spec carrying the caller-supplied value.
func (f FieldSpec) WithValue(value string) FieldSpec {
	f.Value = value
	return f
}

type FillOutcome struct {
	FieldName      string   `json:"field_name"`
	AttemptedValue string   `json:"attempted_value"`
	Succeeded      bool     `json:"succeeded"`
	StrategyUsed   Strategy `json:"strategy_used,omitempty"`
	ErrorDetail    string   `json:"error_detail,omitempty"`
	Critical       bool     `json:"critical,omitempty"`
}
