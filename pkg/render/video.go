package render

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/icza/mjpeg"
)

// VideoSink writes frames into an MJPEG AVI file
type VideoSink struct {
	writer  mjpeg.AviWriter
	buf     bytes.Buffer
	options *jpeg.Options
	frames  int
}

// NewVideoSink creates the video file. interval is the time each frame is
// shown and sets the frame rate.
func NewVideoSink(path string, bounds image.Rectangle, interval time.Duration) (*VideoSink, error) {
	writer, err := mjpeg.New(path, int32(bounds.Dx()), int32(bounds.Dy()), FrameRate(interval))
	if err != nil {
		return nil, fmt.Errorf("failed to create MJPEG writer: %w", err)
	}
	return &VideoSink{
		writer:  writer,
		options: &jpeg.Options{Quality: 75},
	}, nil
}

// FrameRate converts a per-frame interval to whole frames per second, at least 1.
func FrameRate(interval time.Duration) int32 {
	if interval <= 0 {
		return 1
	}
	fps := int32(time.Second / interval)
	if fps < 1 {
		return 1
	}
	return fps
}

func (v *VideoSink) AddFrame(_ int, img *image.RGBA) error {
	defer v.buf.Reset()

	if err := jpeg.Encode(&v.buf, img, v.options); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if err := v.writer.AddFrame(v.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to add frame: %w", err)
	}
	v.frames++
	return nil
}

// Frames returns the number of frames written
func (v *VideoSink) Frames() int {
	return v.frames
}

func (v *VideoSink) Close() error {
	if err := v.writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize video: %w", err)
	}
	return nil
}
