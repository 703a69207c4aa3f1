package storage

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/frugy/pkg/fru"
	"github.com/ssargent/frugy/pkg/logging"
	"github.com/ssargent/frugy/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *ImageStore {
	t.Helper()
	s, err := Open(t.TempDir(), registry.Default(), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func chassisImage(t *testing.T, serial string) []byte {
	t.Helper()
	rec, err := registry.Default().NewRecord(registry.ChassisInfo, map[string]fru.Value{
		"serial_number": fru.Text(serial),
	})
	require.NoError(t, err)
	image, err := rec.Serialize()
	require.NoError(t, err)
	return image
}

func TestPutGet(t *testing.T) {
	s := openStore(t)
	image := chassisImage(t, "SN1")

	id, err := s.Put(registry.ChassisInfo, image)
	require.NoError(t, err)
	assert.NotEqual(t, ksuid.Nil, id)

	e, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, registry.ChassisInfo, e.Type)
	assert.Equal(t, image, e.Image)
	assert.Equal(t, len(image), e.Size)
	assert.Equal(t, id.Time(), e.Created)
}

func TestPut_KeepsTrailingFill(t *testing.T) {
	s := openStore(t)
	image := append(chassisImage(t, "SN1"), 0xff, 0xff, 0xff, 0xff)

	id, err := s.Put(registry.ChassisInfo, image)
	require.NoError(t, err)
	e, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, image, e.Image)
}

func TestPut_Invalid(t *testing.T) {
	s := openStore(t)
	image := chassisImage(t, "SN1")

	bad := append([]byte(nil), image...)
	bad[len(bad)-1]++
	_, err := s.Put(registry.ChassisInfo, bad)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = s.Put(registry.ChassisInfo, image[:3])
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = s.Put("MultiRecord", image)
	assert.ErrorIs(t, err, registry.ErrUnknownType)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_CreationOrder(t *testing.T) {
	s := openStore(t)

	var ids []ksuid.KSUID
	for _, serial := range []string{"A", "B", "C"} {
		id, err := s.Put(registry.ChassisInfo, chassisImage(t, serial))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	got := make([]ksuid.KSUID, len(entries))
	for i, e := range entries {
		got[i] = e.ID
	}
	want := append([]ksuid.KSUID(nil), ids...)
	ksuid.Sort(want)
	assert.Equal(t, want, got)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	id, err := s.Put(registry.ChassisInfo, chassisImage(t, "SN1"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)
}

func TestGet_Missing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(ksuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, registry.Default(), logging.Nop())
	require.NoError(t, err)
	id, err := s.Put(registry.ChassisInfo, chassisImage(t, "SN1"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir, registry.Default(), logging.Nop())
	require.NoError(t, err)
	defer s.Close()
	e, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, registry.ChassisInfo, e.Type)
}

func TestParseID(t *testing.T) {
	id := ksuid.New()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestFrame(t *testing.T) {
	value, err := frame("ChassisInfo", []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0xcb}, append([]byte("ChassisInfo"), 1, 2)...), value)

	e, err := unframe(ksuid.New(), value)
	require.NoError(t, err)
	assert.Equal(t, "ChassisInfo", e.Type)
	assert.Equal(t, []byte{1, 2}, e.Image)

	_, err = unframe(ksuid.New(), []byte{0xcb, 'C'})
	assert.ErrorIs(t, err, ErrCorrupt)
}
