package model

// DefaultColumns are the certificate table columns, also used by table exports without columns.
var DefaultColumns = []string{"#", "Vraag", "Correct", "Gegeven", "✓/✗"}

// Table is a schema-less table for the generic export.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// PrefKeyName and PrefKeyClass are the persisted prefill keys.
const (
	PrefKeyName  = "mr_name"
	PrefKeyClass = "mr_class"
)
