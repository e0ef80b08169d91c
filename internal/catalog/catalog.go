// Package catalog models the read-only catalog view consulted during
// compilation: sys.schemas, sys.tables, sys.columns, sys.keys,
// sys.keycolumns, sys.triggers, sys.types (spec.md §6 "Catalog view used").
// rel_bin lowering never mutates the catalog (spec.md §5 "Shared
// resources"); its CREATE/ALTER/DROP only ever produce a DDL statement that
// a downstream component applies. The PSM compiler's CreateFunction and
// CreateTrigger are the exceptions: they register the new function or
// trigger here directly.
package catalog

import "github.com/columnar-sql/relbin/internal/types"

// Column describes one column of a table.
type Column struct {
	Name     string
	Subtype  types.Subtype
	Nullable bool
	// Default holds a literal default value text, used by ON UPDATE/DELETE
	// SET DEFAULT cascade actions.
	Default string
}

// KeyKind distinguishes the three key families relevant to rel_bin's
// constraint enforcement (spec.md §4.3.10).
type KeyKind int

const (
	PrimaryKey KeyKind = iota
	UniqueKey
	ForeignKey
)

// Action names an ON UPDATE/ON DELETE referential action (spec.md §4.3.10).
type Action int

const (
	ActNoAction Action = iota // RESTRICT
	ActCascade
	ActSetNull
	ActSetDefault
)

// Key describes a PRIMARY KEY, UNIQUE KEY or FOREIGN KEY constraint.
type Key struct {
	ID      int
	Name    string
	Kind    KeyKind
	Table   *Table
	Columns []string

	// Foreign-key-only fields.
	RefTable  *Table
	RefKey    *Key // the PK/UK referenced
	OnUpdate  Action
	OnDelete  Action
}

// Index describes a secondary index, which may be hash-backed (enabling
// the HASHIDX short-circuit, spec.md §4.3.11) and/or back a join (enabling
// the JOINIDX shortcut, spec.md §4.3.3).
type Index struct {
	Name       string
	Table      *Table
	Columns    []string
	HashBacked bool
	// JoinIndex, when non-nil, names the FK this index accelerates for
	// join-index lowering.
	JoinIndex *Key
}

// TriggerEvent / TriggerTime name when a trigger fires.
type TriggerEvent int

const (
	OnInsert TriggerEvent = iota
	OnUpdate
	OnDelete
)

type TriggerTime int

const (
	Before TriggerTime = iota
	After
)

// Trigger describes a CREATE TRIGGER body bound to a table.
type Trigger struct {
	Name        string
	Table       *Table
	Event       TriggerEvent
	Time        TriggerTime
	Orientation string // "ROW" or "STATEMENT"
	NewName     string
	OldName     string
	Condition   string
	Body        string // raw SQL text, reparsed at instantiate time
	// Ordinal preserves declaration order so firing order matches
	// insertion order per table (spec.md §5 "Ordering guarantees").
	Ordinal int
}

// Table describes a base table.
type Table struct {
	Schema   string
	Name     string
	Columns  []Column
	Indexes  []*Index
	Keys     []*Key
	Triggers []*Trigger
	// RowCount is a cardinality estimate, the sole input to the partition
	// marker (spec.md §4 Component 5, §8 property 8).
	RowCount int64
}

// ColumnIndex returns the ordinal of a column by name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// PrimaryAndUniqueKeys returns every PK/UK constraint on the table.
func (t *Table) PrimaryAndUniqueKeys() []*Key {
	var out []*Key
	for _, k := range t.Keys {
		if k.Kind == PrimaryKey || k.Kind == UniqueKey {
			out = append(out, k)
		}
	}
	return out
}

// ForeignKeys returns every FK constraint whose child side is this table.
func (t *Table) ForeignKeys() []*Key {
	var out []*Key
	for _, k := range t.Keys {
		if k.Kind == ForeignKey {
			out = append(out, k)
		}
	}
	return out
}

// TriggersFor returns the table's triggers for one (event, time) pair, in
// declaration order.
func (t *Table) TriggersFor(ev TriggerEvent, tm TriggerTime) []*Trigger {
	var out []*Trigger
	for _, tr := range t.Triggers {
		if tr.Event == ev && tr.Time == tm {
			out = append(out, tr)
		}
	}
	return out
}

// ReferencingForeignKeys returns every FK in the catalog whose referenced
// key is uk, i.e. the keys that must cascade when uk's row is updated or
// deleted (spec.md §4.3.10 "UKs that are referenced by FKs").
func (c *Catalog) ReferencingForeignKeys(uk *Key) []*Key {
	var out []*Key
	for _, s := range c.Schemas {
		for _, t := range s.Tables {
			for _, k := range t.ForeignKeys() {
				if k.RefKey == uk {
					out = append(out, k)
				}
			}
		}
	}
	return out
}

// Schema groups tables and functions under one namespace.
type Schema struct {
	Name   string
	Tables map[string]*Table
	Funcs  map[string]*Function
}

// Function describes a CREATE FUNCTION/PROCEDURE declaration.
type Function struct {
	Schema     string
	Name       string
	Params     []Column
	IsProc     bool
	ReturnType *types.Subtype // nil for procedures and table functions
	// ReturnTable is set for table-returning functions.
	ReturnTable []Column
	External    bool
	Module      string
	Symbol      string
	Vararg      bool
}

// Catalog is the read-only root: a set of schemas.
type Catalog struct {
	Schemas map[string]*Schema
}

func New() *Catalog {
	return &Catalog{Schemas: make(map[string]*Schema)}
}

func (c *Catalog) AddSchema(name string) *Schema {
	s := &Schema{Name: name, Tables: make(map[string]*Table), Funcs: make(map[string]*Function)}
	c.Schemas[name] = s
	return s
}

func (c *Catalog) Schema(name string) (*Schema, bool) {
	s, ok := c.Schemas[name]
	return s, ok
}

func (s *Schema) AddTable(t *Table) {
	t.Schema = s.Name
	s.Tables[t.Name] = t
}

func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

func (s *Schema) AddFunc(f *Function) {
	f.Schema = s.Name
	s.Funcs[funcSignature(f.Name, f.Params)] = f
}

func (s *Schema) Func(name string, params []Column) (*Function, bool) {
	f, ok := s.Funcs[funcSignature(name, params)]
	return f, ok
}

func funcSignature(name string, params []Column) string {
	sig := name + "("
	for i, p := range params {
		if i > 0 {
			sig += ","
		}
		sig += p.Subtype.String()
	}
	return sig + ")"
}
