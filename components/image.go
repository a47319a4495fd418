package components

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/uxcrew/schema"
)

// ErrUnsupportedImage is returned for uploads which are not PNG or JPEG
var ErrUnsupportedImage = errors.New("unsupported image format, expected png or jpeg")

// LoadImage detects the format of an encoded image, reads its dimensions and
// downsizes it to fit within maxDimension x maxDimension when maxDimension > 0.
func LoadImage(data []byte, maxDimension int) (*schema.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	var format imaging.Format
	ret := new(schema.Image)
	switch mtype := mimetype.Detect(data); {
	case mtype.Is("image/png"):
		format = imaging.PNG
		ret.Format = schema.FormatPNG
	case mtype.Is("image/jpeg"):
		format = imaging.JPEG
		ret.Format = schema.FormatJPEG
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	ret.Width, ret.Height = cfg.Width, cfg.Height
	if maxDimension <= 0 || (cfg.Width <= maxDimension && cfg.Height <= maxDimension) {
		ret.Data = data
		return ret, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, format); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	bounds := resized.Bounds()
	ret.Data = buf.Bytes()
	ret.Width, ret.Height = bounds.Dx(), bounds.Dy()
	return ret, nil
}
