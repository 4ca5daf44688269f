package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 3)
	w.WriteUint8(200)
	w.WriteInt8(-5)
	w.WriteUint16(60000)
	w.WriteInt16(-1234)
	w.WriteUint32(4000000000)
	w.WriteInt32(-7)
	w.WriteFloat32(1.5)
	w.WriteFloat64(-2.25)
	w.WriteBool(true)
	w.WriteString("héllo")
	w.WriteCount(3)
	assert.NoError(t, w.Err())

	r := NewReader(&buf, w.Version())
	assert := assert.New(t)
	assert.Equal(uint8(200), r.ReadUint8())
	assert.Equal(int8(-5), r.ReadInt8())
	assert.Equal(uint16(60000), r.ReadUint16())
	assert.Equal(int16(-1234), r.ReadInt16())
	assert.Equal(uint32(4000000000), r.ReadUint32())
	assert.Equal(int32(-7), r.ReadInt32())
	assert.Equal(float32(1.5), r.ReadFloat32())
	assert.Equal(-2.25, r.ReadFloat64())
	assert.True(r.ReadBool())
	assert.Equal("héllo", r.ReadString())
	assert.Equal(3, r.ReadCount(10))
	assert.NoError(r.Err())
	assert.True(r.AtLeast(2))
	assert.False(r.AtLeast(4))
}

func TestReaderErrorIsSticky(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1}), 1)
	assert := assert.New(t)
	assert.Equal(uint8(1), r.ReadUint8())
	assert.Equal(uint32(0), r.ReadUint32())
	assert.ErrorIs(r.Err(), io.EOF)
	assert.Equal("", r.ReadString())
	assert.ErrorIs(r.Err(), io.EOF)
}

func TestReadCountLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 1)
	w.WriteCount(500)
	r := NewReader(&buf, 1)
	assert.Equal(t, 0, r.ReadCount(100))
	assert.Error(t, r.Err())
}
