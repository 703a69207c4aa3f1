// Package storage keeps a catalog of FRU area images in pebble, keyed by
// KSUID so that iteration order is creation order.
package storage

import (
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/frugy/pkg/fru"
	"github.com/ssargent/frugy/pkg/registry"
)

var (
	ErrNotFound     = errors.New("storage: image not found")
	ErrInvalidImage = errors.New("storage: invalid image")
	ErrInvalidID    = errors.New("storage: invalid image id")
	ErrCorrupt      = errors.New("storage: corrupt catalog entry")
)

// Entry is one stored image.
type Entry struct {
	ID      ksuid.KSUID `json:"id"`
	Type    string      `json:"type"`
	Size    int         `json:"size"`
	Created time.Time   `json:"created"`
	Image   []byte      `json:"-"`
}

// ImageStore is a pebble-backed image catalog. It is safe for concurrent use.
type ImageStore struct {
	db     *pebble.DB
	reg    *registry.Registry
	logger log.Logger
}

// Open opens or creates the catalog in dir. Images are validated against the
// area types of reg.
func Open(dir string, reg *registry.Registry, logger log.Logger) (*ImageStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open catalog %s", dir)
	}
	level.Debug(logger).Log("msg", "opened image catalog", "dir", dir)
	return &ImageStore{db: db, reg: reg, logger: logger}, nil
}

// ParseID parses the string form of an image id.
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, errors.Wrapf(ErrInvalidID, "%q", s)
	}
	return id, nil
}

// Put stores image as an area of type typ. The image must decode as that
// type; bytes after the area, such as EEPROM fill, are kept.
func (s *ImageStore) Put(typ string, image []byte) (ksuid.KSUID, error) {
	if _, _, err := s.reg.Decode(typ, image); err != nil {
		if errors.Is(err, registry.ErrUnknownType) {
			return ksuid.Nil, err
		}
		return ksuid.Nil, errors.Wrapf(ErrInvalidImage, "%s: %v", typ, err)
	}

	value, err := frame(typ, image)
	if err != nil {
		return ksuid.Nil, err
	}

	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), value, pebble.Sync); err != nil {
		return ksuid.Nil, errors.Wrap(err, "store image")
	}
	level.Info(s.logger).Log("msg", "stored image", "id", id, "type", typ, "size", len(image))
	return id, nil
}

// Get returns the image stored under id.
func (s *ImageStore) Get(id ksuid.KSUID) (*Entry, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrap(ErrNotFound, id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}
	defer closer.Close()

	return unframe(id, data)
}

// List returns every stored image in creation order.
func (s *ImageStore) List() ([]Entry, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "list images")
	}
	defer iter.Close()

	var out []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return nil, errors.Wrapf(ErrCorrupt, "key % x", iter.Key())
		}
		e, err := unframe(id, iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, errors.Wrap(iter.Error(), "list images")
}

// Delete removes the image stored under id.
func (s *ImageStore) Delete(id ksuid.KSUID) error {
	_, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return errors.Wrap(ErrNotFound, id.String())
	}
	if err != nil {
		return errors.Wrap(err, "read image")
	}
	closer.Close()

	if err := s.db.Delete(id.Bytes(), pebble.Sync); err != nil {
		return errors.Wrap(err, "delete image")
	}
	level.Info(s.logger).Log("msg", "deleted image", "id", id)
	return nil
}

func (s *ImageStore) Close() error {
	return s.db.Close()
}

// frame prefixes image with its area type, held in an ASCII 8-bit string
// field.
func frame(typ string, image []byte) ([]byte, error) {
	head, err := fru.NewStringField(fru.ASCII8Bit).WithDefault(typ).Serialize()
	if err != nil {
		return nil, errors.Wrapf(err, "frame type %q", typ)
	}
	return append(head, image...), nil
}

// unframe copies data, which pebble owns, into an Entry.
func unframe(id ksuid.KSUID, data []byte) (*Entry, error) {
	head := fru.NewStringField(fru.ASCII8Bit)
	image, err := head.Deserialize(data)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", id, err)
	}
	return &Entry{
		ID:      id,
		Type:    head.Text(),
		Size:    len(image),
		Created: id.Time(),
		Image:   append([]byte(nil), image...),
	}, nil
}
