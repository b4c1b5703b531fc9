package render

import "kclass/internal/ffmpeg"

// FrameWriter accepts packed rgb24 frames. *ffmpeg.Encoder implements it.
type FrameWriter interface {
	WriteFrame(frame []byte) error
}

var _ FrameWriter = (*ffmpeg.Encoder)(nil)

// VideoSink rasterises every tick and streams it to a FrameWriter.
type VideoSink struct {
	*Raster
	out FrameWriter
	buf []byte
}

func NewVideoSink(raster *Raster, out FrameWriter) *VideoSink {
	return &VideoSink{Raster: raster, out: out}
}

// End draws the frame and forwards it.
func (s *VideoSink) End() error {
	if err := s.Raster.End(); err != nil {
		return err
	}
	s.buf = s.RGB24(s.buf)
	return s.out.WriteFrame(s.buf)
}
