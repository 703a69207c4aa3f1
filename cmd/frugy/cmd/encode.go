/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/ssargent/frugy/pkg/document"
	"github.com/ssargent/frugy/pkg/fru"
	"github.com/ssargent/frugy/pkg/registry"
)

var (
	errInputType     = errors.New("unsupported input file type")
	errImageTooLarge = errors.New("image does not fit the EEPROM")
)

// now is replaced in tests
var now = time.Now

type encodeOptions struct {
	eepromSize int
	overrides  []string
	timestamp  bool
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <file.yaml>",
	Short: "Encode a YAML area document into a binary image",
	Long: `Encode a YAML area document into a binary FRU area image.

The document names one area type and its fields:

  BoardInfo:
    manufacturer: ACME
    part_number: {value: "1234", encoding: bcd_plus}

Examples:
  frugy encode board.yaml
  frugy encode board.yaml -o board.bin --eeprom-size 256
  frugy encode board.yaml --set serial_number=SN0042 --timestamp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := envFrom(cmd)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		opts := encodeOptions{eepromSize: e.cfg.EEPROMSize}
		if cmd.Flags().Changed("eeprom-size") {
			opts.eepromSize, _ = cmd.Flags().GetInt("eeprom-size")
		}
		opts.overrides, _ = cmd.Flags().GetStringArray("set")
		opts.timestamp, _ = cmd.Flags().GetBool("timestamp")

		image, err := encodeFile(e, args[0], opts)
		if err != nil {
			return err
		}

		if output == "" {
			output = replaceExt(args[0], ".bin")
		}
		if err := os.WriteFile(output, image, 0644); err != nil {
			return errors.Wrap(err, "failed to write image")
		}
		cmd.Printf("Wrote %d bytes to %s\n", len(image), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("output", "o", "", "Output file (default is the input name with .bin)")
	encodeCmd.Flags().Int("eeprom-size", 0, "Pad the image with 0xFF to this many bytes (default from config)")
	encodeCmd.Flags().StringArray("set", nil, "Override a field, as name=value (repeatable)")
	encodeCmd.Flags().Bool("timestamp", false, "Set the manufacturing time to now")
}

// encodeFile reads a YAML document and returns its binary image
func encodeFile(e *env, path string, opts encodeOptions) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
	default:
		return nil, errors.Wrapf(errInputType, "%s: expected a .yml or .yaml file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read document")
	}

	enc, err := e.cfg.Encoding()
	if err != nil {
		return nil, err
	}
	rec, err := document.DecodeYAML(e.reg, data, document.WithEncoding(enc))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	for _, expr := range opts.overrides {
		if err := document.ApplyOverride(rec, expr); err != nil {
			return nil, err
		}
	}

	if opts.timestamp {
		if err := stamp(rec); err != nil {
			return nil, err
		}
	}

	image, err := rec.Serialize()
	if err != nil {
		return nil, err
	}
	level.Info(e.logger).Log("msg", "encoded area", "type", rec.Schema().Name(), "size", len(image))
	return padImage(image, opts.eepromSize)
}

func stamp(rec *fru.Record) error {
	if !rec.Contains(registry.MfgDateTimeField) {
		return errors.Errorf("%s has no %s field", rec.Schema().Name(), registry.MfgDateTimeField)
	}
	minutes, err := registry.MfgDateTime(now())
	if err != nil {
		return err
	}
	return rec.Set(registry.MfgDateTimeField, fru.Scalar(minutes))
}

// padImage fills image with 0xFF up to size, the erased state of an EEPROM.
// A size of 0 leaves the image as is.
func padImage(image []byte, size int) ([]byte, error) {
	if size <= 0 {
		return image, nil
	}
	if len(image) > size {
		return nil, errors.Wrapf(errImageTooLarge, "%d bytes, EEPROM holds %d", len(image), size)
	}
	out := make([]byte, size)
	copy(out, image)
	for i := len(image); i < size; i++ {
		out[i] = 0xff
	}
	return out, nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
