// Command relbinc is a small demo CLI that loads a canned relational-tree
// fixture (a catalog table plus a basetable/select/project query,
// authored as YAML) and prints the statement DAG rel_bin lowers it to,
// exercising the compiler pipeline end to end (SPEC_FULL.md DOMAIN STACK:
// "cmd/relbinc demo CLI").
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/columnar-sql/relbin/internal/planner"
	"github.com/columnar-sql/relbin/internal/relbin"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relbinc",
		Short: "Lower a fixture relational tree into a physical statement DAG",
	}
	root.AddCommand(newCompileCmd())
	return root
}

func newCompileCmd() *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a YAML fixture into its lowered statement DAG",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}
			cat, table := buildCatalog(f)
			root, err := buildRelTree(table, f.Query)
			if err != nil {
				return err
			}

			cfg := planner.DefaultConfig()
			ctx := planner.New(cfg, cat)
			ctx.CurrentSchema = f.Schema

			compiler := relbin.New(ctx)
			out, err := compiler.Compile(root)
			if err != nil {
				return err
			}

			cmd.Println(Dump(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "path to a YAML relational-tree fixture")
	cmd.MarkFlagRequired("fixture")
	return cmd
}
