package render

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyWriter fails the first AddFrame call and records the rest.
type flakyWriter struct {
	calls  int
	frames [][]byte
}

func (f *flakyWriter) AddFrame(jpegData []byte) error {
	f.calls++
	if f.calls == 1 {
		return errors.New("disk full")
	}
	f.frames = append(f.frames, append([]byte(nil), jpegData...))
	return nil
}

func (f *flakyWriter) Close() error {
	return nil
}

func TestVideoSinkFailedFrameLeavesNoBytesBehind(t *testing.T) {
	writer := &flakyWriter{}
	sink := &VideoSink{writer: writer, options: &jpeg.Options{Quality: 75}}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	require.Error(t, sink.AddFrame(1, img))
	assert.Zero(t, sink.buf.Len())
	assert.Zero(t, sink.Frames())

	require.NoError(t, sink.AddFrame(2, img))
	require.Len(t, writer.frames, 1)

	var want bytes.Buffer
	require.NoError(t, jpeg.Encode(&want, img, &jpeg.Options{Quality: 75}))
	assert.Equal(t, want.Bytes(), writer.frames[0])
	assert.Equal(t, 1, sink.Frames())
}
