package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	stddraw "image/draw"
	"image/jpeg"
	_ "image/png"
	"net/http"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// MaxPreviewSide bounds the longest side of a preview image.
const MaxPreviewSide = 320

var ErrUnsupported = errors.New("la foto debe ser png, jpeg o webp")

// DetectType returns the mime type of raw when it is an accepted photo format.
func DetectType(raw []byte) (string, error) {
	mime := http.DetectContentType(raw)
	switch mime {
	case "image/png", "image/jpeg", "image/webp":
		return mime, nil
	default:
		return "", ErrUnsupported
	}
}

func decode(raw []byte) (image.Image, error) {
	if _, err := DetectType(raw); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if decoded, decodeErr := webp.Decode(bytes.NewReader(raw)); decodeErr == nil {
			return decoded, nil
		}
		return nil, errors.New("no se pudo leer la foto")
	}
	return img, nil
}

// Thumbnail scales raw to fit within side x side and encodes it as JPEG.
func Thumbnail(raw []byte, side int) ([]byte, error) {
	img, err := decode(raw)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New("dimensiones de imagen inválidas")
	}
	if side <= 0 {
		side = MaxPreviewSide
	}

	targetW, targetH := width, height
	if width > side || height > side {
		if width >= height {
			targetW = side
			targetH = max(1, height*side/width)
		} else {
			targetH = side
			targetW = max(1, width*side/height)
		}
	}

	// Flatten onto white so transparent PNGs do not turn black in JPEG.
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	stddraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, stddraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, errors.New("no se pudo codificar la vista previa")
	}
	return out.Bytes(), nil
}

// Preview returns a data: URL of a thumbnail of raw, ready for an <img src>.
func Preview(raw []byte) (string, error) {
	thumb, err := Thumbnail(raw, MaxPreviewSide)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb), nil
}
