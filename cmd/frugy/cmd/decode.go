/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/document"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file.bin>",
	Short: "Decode a binary area image into a YAML document",
	Long: `Decode a binary FRU area image into a YAML area document.

Examples:
  frugy decode board.bin --type BoardInfo
  frugy decode board.bin --type BoardInfo -o board.yaml
  frugy decode board.bin --type BoardInfo --dump`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")
		output, _ := cmd.Flags().GetString("output")
		dump, _ := cmd.Flags().GetBool("dump")

		out, err := decodeFile(e, args[0], typ)
		if err != nil {
			return err
		}

		if dump || output == "-" {
			_, err := cmd.OutOrStdout().Write(out)
			return err
		}
		if output == "" {
			output = replaceExt(args[0], ".yaml")
		}
		if err := os.WriteFile(output, out, 0644); err != nil {
			return errors.Wrap(err, "failed to write document")
		}
		cmd.Printf("Wrote %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringP("type", "t", "", "Area type of the image (see frugy list)")
	decodeCmd.Flags().StringP("output", "o", "", "Output file, - for stdout (default is the input name with .yaml)")
	decodeCmd.Flags().Bool("dump", false, "Write the document to stdout")
	_ = decodeCmd.MarkFlagRequired("type")
}

// decodeFile parses the image at path as an area of type typ and returns
// the YAML document
func decodeFile(e *env, path, typ string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) != ".bin" {
		return nil, errors.Wrapf(errInputType, "%s: expected a .bin file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}

	rec, rest, err := e.reg.Decode(typ, data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if len(bytes.Trim(rest, "\xff")) > 0 {
		level.Warn(e.logger).Log("msg", "ignoring data after area", "file", path, "bytes", len(rest))
	}
	level.Info(e.logger).Log("msg", "decoded area", "type", typ, "size", len(data)-len(rest))
	return document.EncodeYAML(rec)
}
