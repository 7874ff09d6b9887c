package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// decoders registrados para image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"pet-lost-found/internal/platform/logger"
)

const (
	DefaultMaxWidth    = 1024
	DefaultJPEGQuality = 85
)

// Normalizer re-escribe in place las fotos subidas: decodifica, reduce el
// ancho si supera el máximo y re-encodea según el formato original. Corre
// inline en el request de upload; un fallo acá nunca corta el alta del
// reporte, solo se loggea.
type Normalizer struct {
	maxWidth int
	quality  int
	log      logger.Logger
}

func NewNormalizer(maxWidth, jpegQuality int, log logger.Logger) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Normalizer{
		maxWidth: maxWidth,
		quality:  jpegQuality,
		log:      log,
	}
}

// Normalize procesa el archivo y se traga cualquier error (best-effort).
func (n *Normalizer) Normalize(path string) {
	if err := n.normalize(path); err != nil {
		n.log.Warn("image normalization failed", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func (n *Normalizer) normalize(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	// formatos desconocidos se re-encodean como png (preserva alpha)
	switch format {
	case "jpeg", "png", "gif", "webp":
	default:
		format = "png"
	}

	if img.Bounds().Dx() > n.maxWidth {
		// alto 0 => mantiene la proporción
		img = imaging.Resize(img, n.maxWidth, 0, imaging.Lanczos)
	}

	// jpeg no tiene canal alpha: aplanar sobre blanco
	if format == "jpeg" && !isOpaque(img) {
		bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		img = imaging.OverlayCenter(bg, img, 1.0)
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality))
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	case "gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(n.quality)})
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}
