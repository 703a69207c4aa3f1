/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/storage"
)

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local image catalog",
	Long: `Manage the local catalog of validated area images kept under the data directory.

Examples:
  frugy store put --type BoardInfo board.bin
  frugy store list
  frugy store get 2fJ1... -o board.bin
  frugy store delete 2fJ1...`,
}

var storePutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Validate an image and add it to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		typ, _ := cmd.Flags().GetString("type")

		image, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to read image")
		}

		s, err := openStore(e)
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.Put(typ, image)
		if err != nil {
			return err
		}
		cmd.Printf("Stored %s as %s\n", args[0], id)
		return nil
	},
}

var storeGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch an image from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		id, err := storage.ParseID(args[0])
		if err != nil {
			return err
		}
		s, err := openStore(e)
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := s.Get(id)
		if err != nil {
			return err
		}
		if output == "" {
			output = id.String() + ".bin"
		}
		if err := os.WriteFile(output, entry.Image, 0644); err != nil {
			return errors.Wrap(err, "failed to write image")
		}
		cmd.Printf("Wrote %s (%s, %d bytes) to %s\n", id, entry.Type, entry.Size, output)
		return nil
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(e)
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := s.List()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tSIZE\tCREATED")
		for _, entry := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", entry.ID, entry.Type, entry.Size, entry.Created.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an image from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}
		id, err := storage.ParseID(args[0])
		if err != nil {
			return err
		}
		s, err := openStore(e)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Delete(id); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePutCmd, storeGetCmd, storeListCmd, storeDeleteCmd)

	storePutCmd.Flags().StringP("type", "t", "", "Area type of the image (required)")
	if err := storePutCmd.MarkFlagRequired("type"); err != nil {
		panic(err)
	}
	storeGetCmd.Flags().StringP("output", "o", "", "Output file (default is <id>.bin)")
}

func storeDir(e *env) string {
	return filepath.Join(e.cfg.DataDir, "images")
}

func openStore(e *env) (*storage.ImageStore, error) {
	if err := os.MkdirAll(e.cfg.DataDir, 0750); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	return storage.Open(storeDir(e), e.reg, e.logger)
}
