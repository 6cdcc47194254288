package container

import (
	"errors"
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrVideoUnsupported = errors.New("Video frame decoding is not available")

// FrameSource provides the resolution of images and video frames, and the frame list of a video.
// Only headers need to be decoded.
type FrameSource interface {
	ImageSize(filename string) (width, height int, err error)
	FrameSize(videoFilename string, frameNum int) (width, height int, err error)
	FrameTimestamps(videoFilename string) ([]float64, error) // Timestamp of every frame, in seconds
}

// ImageFiles is a FrameSource for still images on the local filesystem.
// It does not decode video.
type ImageFiles struct{}

func (ImageFiles) ImageSize(filename string) (width, height int, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("Failed to decode image header of %v: %w", filename, err)
	}
	return cfg.Width, cfg.Height, nil
}

func (ImageFiles) FrameSize(videoFilename string, frameNum int) (width, height int, err error) {
	return 0, 0, fmt.Errorf("%w: %v frame %v", ErrVideoUnsupported, videoFilename, frameNum)
}

func (ImageFiles) FrameTimestamps(videoFilename string) ([]float64, error) {
	return nil, fmt.Errorf("%w: %v", ErrVideoUnsupported, videoFilename)
}
