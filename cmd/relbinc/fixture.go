package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/columnar-sql/relbin/internal/catalog"
	"github.com/columnar-sql/relbin/internal/expr"
	"github.com/columnar-sql/relbin/internal/rel"
	"github.com/columnar-sql/relbin/internal/types"
)

// fixture is the YAML shape of a canned relational-tree fixture: a
// catalog table plus a small query over it (basetable -> select ->
// project), enough to drive rel_bin end to end for the demo CLI
// (SPEC_FULL.md DOMAIN STACK: "cmd/relbinc fixture loading").
type fixture struct {
	Schema string        `yaml:"schema"`
	Table  fixtureTable  `yaml:"table"`
	Query  fixtureQuery  `yaml:"query"`
}

type fixtureTable struct {
	Name     string            `yaml:"name"`
	Columns  []fixtureColumn   `yaml:"columns"`
	RowCount int64             `yaml:"rowcount"`
}

type fixtureColumn struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Digits   int    `yaml:"digits"`
	Scale    int    `yaml:"scale"`
	Nullable bool   `yaml:"nullable"`
}

type fixtureQuery struct {
	Select  []fixturePredicate `yaml:"select"`
	Project []string           `yaml:"project"`
}

type fixturePredicate struct {
	Column string      `yaml:"column"`
	Op     string      `yaml:"op"`
	Value  interface{} `yaml:"value"`
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

func kindOf(name string) types.Kind {
	switch name {
	case "boolean":
		return types.KindBoolean
	case "int":
		return types.KindInt
	case "bigint":
		return types.KindBigInt
	case "decimal":
		return types.KindDecimal
	case "double":
		return types.KindDouble
	case "char":
		return types.KindChar
	case "varchar":
		return types.KindVarchar
	case "date":
		return types.KindDate
	case "time":
		return types.KindTime
	case "timestamp":
		return types.KindTimestamp
	case "interval":
		return types.KindInterval
	default:
		return types.KindUnknown
	}
}

// buildCatalog turns the fixture's single table into a one-schema
// catalog.Catalog.
func buildCatalog(f *fixture) (*catalog.Catalog, *catalog.Table) {
	cat := catalog.New()
	sch := cat.AddSchema(f.Schema)

	cols := make([]catalog.Column, len(f.Table.Columns))
	for i, fc := range f.Table.Columns {
		sub := types.Subtype{Base: kindOf(fc.Kind), Digits: fc.Digits, Scale: fc.Scale}
		cols[i] = catalog.Column{Name: fc.Name, Subtype: sub, Nullable: fc.Nullable}
	}
	t := &catalog.Table{Name: f.Table.Name, Columns: cols, RowCount: f.Table.RowCount}
	sch.AddTable(t)
	return cat, t
}

// buildRelTree lowers the fixture's query section into an op_basetable ->
// op_select -> op_project chain (spec.md §4.2, §4.3).
func buildRelTree(t *catalog.Table, q fixtureQuery) (*rel.Node, error) {
	baseExps := make([]expr.Expression, len(t.Columns))
	for i, c := range t.Columns {
		baseExps[i] = expr.NewBaseColumn(t.Name, c.Name, c.Subtype, c.Nullable)
	}
	node := rel.NewBaseTable(t, baseExps)

	if len(q.Select) > 0 {
		preds := make([]expr.Expression, 0, len(q.Select))
		for _, p := range q.Select {
			idx := t.ColumnIndex(p.Column)
			if idx < 0 {
				return nil, fmt.Errorf("unknown predicate column %q", p.Column)
			}
			col := t.Columns[idx]
			lhs := expr.NewBaseColumn(t.Name, col.Name, col.Subtype, col.Nullable)
			flag, err := cmpFlagOf(p.Op)
			if err != nil {
				return nil, err
			}
			rhs := expr.NewLiteral(types.NewAtom(col.Subtype, p.Value))
			preds = append(preds, expr.NewCmp(lhs, rhs, flag))
		}
		node = rel.NewSelect(node, preds)
	}

	if len(q.Project) > 0 {
		exps := make([]expr.Expression, 0, len(q.Project))
		for _, name := range q.Project {
			idx := t.ColumnIndex(name)
			if idx < 0 {
				return nil, fmt.Errorf("unknown project column %q", name)
			}
			col := t.Columns[idx]
			exps = append(exps, expr.NewBaseColumn(t.Name, col.Name, col.Subtype, col.Nullable))
		}
		node = rel.NewProject(node, exps)
	}

	return node, nil
}

func cmpFlagOf(op string) (expr.CmpFlag, error) {
	switch op {
	case "eq", "=":
		return expr.CmpEqual, nil
	case "ne", "!=":
		return expr.CmpNotEqual, nil
	case "lt", "<":
		return expr.CmpLT, nil
	case "le", "<=":
		return expr.CmpLE, nil
	case "gt", ">":
		return expr.CmpGT, nil
	case "ge", ">=":
		return expr.CmpGE, nil
	default:
		return 0, fmt.Errorf("unknown predicate op %q", op)
	}
}
