package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Saver escribe archivos subidos en un directorio plano con nombres generados
// resistentes a colisiones. Es la única coordinación entre uploads
// concurrentes: nombres únicos, nada de locks.
type Saver struct {
	dir     string
	allowed map[string]struct{}
	now     func() time.Time
}

func NewSaver(dir string, allowedExts []string) (*Saver, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("uploads: empty dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(allowedExts))
	for _, e := range allowedExts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}

	return &Saver{
		dir:     dir,
		allowed: allowed,
		now:     time.Now,
	}, nil
}

// Ext devuelve la extensión normalizada (sin punto, en minúsculas).
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Allowed indica si la extensión del archivo está en la allow-list.
// Devuelve también la extensión para poder nombrarla en el error.
func (s *Saver) Allowed(filename string) (string, bool) {
	ext := Ext(filename)
	_, ok := s.allowed[ext]
	return ext, ok
}

// SaveLost guarda el archivo con el esquema timestamp + sufijo random
// (20060102150405_a1b2c3d4.jpg).
func (s *Saver) SaveLost(fh *multipart.FileHeader) (string, error) {
	name := lostFileName(s.now(), Ext(fh.Filename))
	return name, s.save(name, fh)
}

// SaveFound guarda el archivo con un identificador random puro.
func (s *Saver) SaveFound(fh *multipart.FileHeader) (string, error) {
	name := foundFileName(Ext(fh.Filename))
	return name, s.save(name, fh)
}

// Path devuelve la ruta en disco de un archivo guardado.
func (s *Saver) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Dir devuelve el directorio de uploads.
func (s *Saver) Dir() string {
	return s.dir
}

func (s *Saver) save(name string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("uploads: open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(s.Path(name))
	if err != nil {
		return fmt.Errorf("uploads: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("uploads: write file: %w", err)
	}
	return nil
}

func lostFileName(now time.Time, ext string) string {
	if ext == "" {
		ext = "unknown"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s.%s", now.Format("20060102150405"), suffix, ext)
}

func foundFileName(ext string) string {
	if ext == "" {
		ext = "unknown"
	}
	return fmt.Sprintf("%s.%s", uuid.NewString(), ext)
}
