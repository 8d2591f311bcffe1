package apiclient

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const msgBadImage = "Rasm faylini o'qib bo'lmadi."

// PrepareAvatar fits the image inside maxPx square and re-encodes it as JPEG.
func PrepareAvatar(f File, maxPx int) (File, error) {
	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return File{}, errors.Wrap(localError(msgBadImage), err.Error())
	}
	if b := img.Bounds(); maxPx > 0 && (b.Dx() > maxPx || b.Dy() > maxPx) {
		img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return File{}, errors.Wrap(err, "encoding avatar")
	}

	field := f.Field
	if field == "" {
		field = "image"
	}
	name := strings.TrimSuffix(filepath.Base(f.Name), filepath.Ext(f.Name))
	if name == "" || name == "." {
		name = "avatar"
	}
	return File{Field: field, Name: name + ".jpg", Data: buf.Bytes()}, nil
}
