package psm

import (
	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/planerr"
)

// TriggerSpec carries the declarative parts of a CREATE TRIGGER statement
// (spec.md §4.4.3).
type TriggerSpec struct {
	Schema      string
	Name        string
	Table       string
	Event       catalog.TriggerEvent
	Time        catalog.TriggerTime
	Orientation string // "ROW" or "STATEMENT"
	NewName     string
	OldName     string
	Condition   string
	Body        string

	HasPrivilege func(schema string) bool
}

// CreateTrigger implements spec.md §4.4.3 "rel_create_trigger": resolve
// the schema and table, reject a second trigger of the same name, check
// privilege, and
// install the Trigger with its declaration ordinal set from the table's
// current trigger count so firing order matches insertion order
// (spec.md §5 "Ordering guarantees"). No view check is made: the catalog
// has no view kind, so any table the schema resolves is accepted.
func (c *Compiler) CreateTrigger(spec TriggerSpec) (*catalog.Trigger, error) {
	sch, ok := c.ctx.Catalog.Schema(spec.Schema)
	if !ok {
		return nil, planerr.NewSchemaNotFound(spec.Schema)
	}
	table, ok := sch.Table(spec.Table)
	if !ok {
		return nil, planerr.ErrUnknownTable.New(spec.Table)
	}
	for _, tr := range table.Triggers {
		if tr.Name == spec.Name {
			return nil, planerr.ErrObjectExists.New(spec.Name)
		}
	}

	if spec.HasPrivilege != nil && !spec.HasPrivilege(spec.Schema) {
		return nil, planerr.ErrPrivilegeDenied.New("CREATE TRIGGER")
	}

	tr := &catalog.Trigger{
		Name:        spec.Name,
		Table:       table,
		Event:       spec.Event,
		Time:        spec.Time,
		Orientation: spec.Orientation,
		NewName:     spec.NewName,
		OldName:     spec.OldName,
		Condition:   spec.Condition,
		Body:        spec.Body,
		Ordinal:     len(table.Triggers),
	}
	table.Triggers = append(table.Triggers, tr)
	return tr, nil
}

// InstantiateBody implements the "OLD-NEW" binding rel_bin's DML lowering
// performs before reparsing a fired trigger's body (spec.md §4.3.10
// "Triggers"): push a frame named "OLD-NEW" and register the NEW/OLD
// table views the trigger declared, then hand the caller back a closer to
// pop the frame once the (externally reparsed) body has been compiled.
//
// The reparse itself (sql_parse(..., m_instantiate)) depends on the
// external SQL parser and is out of scope (spec.md §1). Package relbin
// does not call this: its fireTriggers pushes its own OLD-NEW frame and
// compileTriggerBody wraps the fired row set as an opaque statement.
func (c *Compiler) InstantiateBody(tr *catalog.Trigger, newRows, oldRows *catalog.Table) (leave func()) {
	c.ctx.Frames.PushFrame("OLD-NEW")
	if tr.NewName != "" && newRows != nil {
		c.ctx.Frames.PushTable(tr.NewName, newRows)
	}
	if tr.OldName != "" && oldRows != nil {
		c.ctx.Frames.PushTable(tr.OldName, oldRows)
	}
	return c.ctx.Frames.PopFrame
}
