package registry

import (
	"time"

	"github.com/pkg/errors"
	"github.com/ssargent/frugy/pkg/fru"
)

// Area type names of the IPMI common areas.
const (
	ChassisInfo = "ChassisInfo"
	BoardInfo   = "BoardInfo"
	ProductInfo = "ProductInfo"
)

// MfgDateTimeField is the BoardInfo field holding the manufacturing time.
const MfgDateTimeField = "mfg_date_time"

// English is the IPMI language code for English.
const English = 0

var mfgEpoch = time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)

const maxMfgMinutes = 1<<24 - 1

var ErrMfgTime = errors.New("registry: manufacturing time out of range")

func areaLength() fru.Entry {
	return fru.Entry{Name: fru.AreaLength, Proto: fru.MustBitField(8), Doc: "area length in bytes, set on write"}
}

func languageCode() fru.Entry {
	return fru.Entry{Name: "language_code", Proto: fru.MustBitField(8).WithDefault(fru.Scalar(English)), Doc: "IPMI language code"}
}

func text(name, doc string) fru.Entry {
	return fru.Entry{Name: name, Proto: fru.NewStringField(fru.ASCII8Bit), Doc: doc}
}

var chassisInfo = fru.MustSchema(ChassisInfo,
	areaLength(),
	fru.Entry{Name: "chassis_type", Proto: fru.MustBitField(8).WithDefault(fru.Scalar(0x02)), Doc: "SMBIOS chassis type, 0x02 is unknown"},
	text("part_number", "chassis part number"),
	text("serial_number", "chassis serial number"),
)

var boardInfo = fru.MustSchema(BoardInfo,
	areaLength(),
	languageCode(),
	fru.Entry{Name: MfgDateTimeField, Proto: fru.MustBitField(24), Doc: "minutes since 1996-01-01 00:00 UTC"},
	text("manufacturer", "board manufacturer"),
	text("product_name", "board product name"),
	text("serial_number", "board serial number"),
	text("part_number", "board part number"),
	text("fru_file_id", "FRU file ID"),
)

var productInfo = fru.MustSchema(ProductInfo,
	areaLength(),
	languageCode(),
	text("manufacturer", "product manufacturer"),
	text("product_name", "product name"),
	text("part_number", "product part or model number"),
	text("version", "product version"),
	text("serial_number", "product serial number"),
	text("asset_tag", "asset tag"),
	text("fru_file_id", "FRU file ID"),
)

// Default returns a registry holding the IPMI common areas.
func Default() *Registry {
	r := New()
	for _, a := range []Area{
		{Schema: chassisInfo, Doc: "Chassis information area"},
		{Schema: boardInfo, Doc: "Board information area"},
		{Schema: productInfo, Doc: "Product information area"},
	} {
		if err := r.Register(a.Schema, a.Doc); err != nil {
			panic(err)
		}
	}
	return r
}

// MfgDateTime converts t into the BoardInfo manufacturing time, in whole
// minutes since 1996-01-01 00:00 UTC.
func MfgDateTime(t time.Time) (uint64, error) {
	d := t.Sub(mfgEpoch)
	if d < 0 || d/time.Minute > maxMfgMinutes {
		return 0, errors.Wrapf(ErrMfgTime, "%s", t.UTC().Format(time.RFC3339))
	}
	return uint64(d / time.Minute), nil
}

// MfgTime converts a BoardInfo manufacturing time back into a time.
func MfgTime(minutes uint64) time.Time {
	return mfgEpoch.Add(time.Duration(minutes) * time.Minute)
}
