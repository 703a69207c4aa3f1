/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/registry"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List the supported area types",
	Long: `List the supported area types, or the fields of one type.

Examples:
  frugy list
  frugy list BoardInfo`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return listTypes(cmd.OutOrStdout(), e.reg)
		}
		return listFields(cmd.OutOrStdout(), e.reg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listTypes(out io.Writer, reg *registry.Registry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tDESCRIPTION")
	for _, name := range reg.Names() {
		area, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, area.Doc)
	}
	return tw.Flush()
}

func listFields(out io.Writer, reg *registry.Registry, typ string) error {
	fields, err := reg.Describe(typ)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tLAYOUT\tDESCRIPTION")
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Layout, f.Doc)
	}
	return tw.Flush()
}
