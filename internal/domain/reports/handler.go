package reports

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-lost-found/internal/platform/flash"
	"pet-lost-found/internal/platform/images"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/uploads"
	"pet-lost-found/internal/web"
)

const multipartMemory = 8 << 20

// layout del input datetime-local del form de perdidos
const lostTimeLayout = "2006-01-02T15:04"

// el form de encontrados manda ISO-8601; se aceptan las variantes usuales
var foundTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", lostTimeLayout}

var (
	lostRequiredFields  = []string{"pet_type", "breed", "color", "gender", "features", "lost_time", "lost_location_text", "contact_info"}
	foundRequiredFields = []string{"pet_type", "color", "gender", "features", "found_time", "found_location_text", "contact_info"}
)

type HandlerConfig struct {
	Renderer *web.Renderer
	Flash    *flash.Store
	Uploads  *uploads.Saver
	Images   *images.Normalizer

	MaxUploadBytes int64

	// keys que se inyectan en las plantillas para los widgets de mapa
	TencentMapKey string
	BaiduMapAK    string

	Log logger.Logger
}

type Handler struct {
	svc *Service
	cfg HandlerConfig
}

func NewHandler(svc *Service, cfg HandlerConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.index)

	r.Route("/report", func(rr chi.Router) {
		rr.Get("/lost", h.lostForm)
		rr.Post("/lost", h.submitLost)
		rr.Get("/found", h.foundForm)
		rr.Post("/found", h.submitFound)

		rr.Post("/{reportID}/found", h.markFound)
	})
}

type indexData struct {
	Title string

	Lost      []LostReport
	Found     []FoundReport
	ShowLost  bool
	ShowFound bool

	Search        url.Values
	TencentMapKey string
	Flashes       []flash.Notice
}

type formPageData struct {
	Title      string
	Form       url.Values
	BaiduMapAK string
	Flashes    []flash.Notice
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		PetType:  q.Get("pet_type"),
		Location: q.Get("location"),
		Color:    q.Get("color"),
		Status:   Status(q.Get("status")),
	}

	// report_type restringe la página a un solo tipo; cualquier otro valor
	// muestra ambos
	reportType := q.Get("report_type")
	showLost := reportType != "found"
	showFound := reportType != "lost"

	var (
		lost  []LostReport
		found []FoundReport
		err   error
	)
	if showLost {
		lost, err = h.svc.ListLost(r.Context(), f)
		if err != nil {
			h.cfg.Log.Error("listing lost reports", map[string]any{"error": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if showFound {
		found, err = h.svc.ListFound(r.Context(), f)
		if err != nil {
			h.cfg.Log.Error("listing found reports", map[string]any{"error": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	h.cfg.Renderer.Render(w, "index.html", indexData{
		Title:         "Lost & Found Pets",
		Lost:          lost,
		Found:         found,
		ShowLost:      showLost,
		ShowFound:     showFound,
		Search:        q,
		TencentMapKey: h.cfg.TencentMapKey,
		Flashes:       h.cfg.Flash.Pop(w, r),
	})
}

func (h *Handler) lostForm(w http.ResponseWriter, r *http.Request) {
	h.renderLostForm(w, r, url.Values{})
}

func (h *Handler) foundForm(w http.ResponseWriter, r *http.Request) {
	h.renderFoundForm(w, r, url.Values{})
}

func (h *Handler) submitLost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.cfg.Flash.Add(w, r, flash.LevelError, "The upload is too large or malformed.")
		h.renderLostForm(w, r, r.PostForm)
		return
	}
	form := r.PostForm

	// un solo error nombrando TODOS los campos faltantes
	if missing := missingFields(form, lostRequiredFields); len(missing) > 0 {
		h.cfg.Flash.Add(w, r, flash.LevelError, "Please fill in all required fields: "+strings.Join(missing, ", "))
		h.renderLostForm(w, r, form)
		return
	}

	if _, err := ResolveBreed(form.Get("breed"), form.Get("other_breed")); err != nil {
		h.cfg.Flash.Add(w, r, flash.LevelError, `Please describe the breed when choosing "other".`)
		h.renderLostForm(w, r, form)
		return
	}

	lostTime, err := time.ParseInLocation(lostTimeLayout, strings.TrimSpace(form.Get("lost_time")), time.Local)
	if err != nil {
		h.cfg.Flash.Add(w, r, flash.LevelError, "The lost time format is invalid, please use the date-time picker.")
		h.renderLostForm(w, r, form)
		return
	}

	lat, lng, coordsOK := parseCoordinates(form.Get("latitude"), form.Get("longitude"))
	if !coordsOK {
		// se avisa pero el alta sigue, sin pin en el mapa
		h.cfg.Flash.Add(w, r, flash.LevelError, "The coordinates are invalid; the report will be saved without a map pin.")
	}

	files := photoFiles(r)
	if len(files) > MaxPhotos {
		h.cfg.Flash.Add(w, r, flash.LevelError, fmt.Sprintf("A maximum of %d photos is allowed.", MaxPhotos))
		h.renderLostForm(w, r, form)
		return
	}
	if ext, ok := checkExtensions(h.cfg.Uploads, files); !ok {
		h.cfg.Flash.Add(w, r, flash.LevelError, fmt.Sprintf("The file type .%s is not allowed.", ext))
		h.renderLostForm(w, r, form)
		return
	}

	photos := h.savePhotos(w, r, files, h.cfg.Uploads.SaveLost)

	_, err = h.svc.CreateLost(r.Context(), CreateLostInput{
		PetType:          form.Get("pet_type"),
		Breed:            form.Get("breed"),
		OtherBreed:       form.Get("other_breed"),
		Color:            form.Get("color"),
		Gender:           form.Get("gender"),
		Age:              form.Get("age"),
		Features:         form.Get("features"),
		LostTime:         lostTime,
		LostLocationText: form.Get("lost_location_text"),
		Latitude:         lat,
		Longitude:        lng,
		ContactInfo:      form.Get("contact_info"),
		Photos:           photos,
	})
	if err != nil {
		h.cfg.Log.Error("creating lost report", map[string]any{"error": err.Error()})
		h.cfg.Flash.Add(w, r, flash.LevelError, "Something went wrong saving the report, please try again.")
		h.renderLostForm(w, r, form)
		return
	}

	h.cfg.Flash.Add(w, r, flash.LevelSuccess, "Lost pet report published!")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) submitFound(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.cfg.Flash.Add(w, r, flash.LevelError, "The upload is too large or malformed.")
		h.renderFoundForm(w, r, r.PostForm)
		return
	}
	form := r.PostForm

	if missing := missingFields(form, foundRequiredFields); len(missing) > 0 {
		h.cfg.Flash.Add(w, r, flash.LevelError, "Please fill in all required fields: "+strings.Join(missing, ", "))
		h.renderFoundForm(w, r, form)
		return
	}

	// acá la raza es opcional, pero "other" sigue exigiendo el texto libre
	if strings.TrimSpace(form.Get("breed")) != "" {
		if _, err := ResolveBreed(form.Get("breed"), form.Get("other_breed")); err != nil {
			h.cfg.Flash.Add(w, r, flash.LevelError, `Please describe the breed when choosing "other".`)
			h.renderFoundForm(w, r, form)
			return
		}
	}

	foundTime, err := parseFoundTime(form.Get("found_time"))
	if err != nil {
		h.cfg.Flash.Add(w, r, flash.LevelError, "The found time format is invalid.")
		h.renderFoundForm(w, r, form)
		return
	}

	lat, lng, coordsOK := parseCoordinates(form.Get("latitude"), form.Get("longitude"))
	if !coordsOK {
		h.cfg.Flash.Add(w, r, flash.LevelError, "The coordinates are invalid; the report will be saved without a map pin.")
	}

	files := photoFiles(r)
	if len(files) > MaxPhotos {
		h.cfg.Flash.Add(w, r, flash.LevelError, fmt.Sprintf("A maximum of %d photos is allowed.", MaxPhotos))
		h.renderFoundForm(w, r, form)
		return
	}
	if ext, ok := checkExtensions(h.cfg.Uploads, files); !ok {
		h.cfg.Flash.Add(w, r, flash.LevelError, fmt.Sprintf("The file type .%s is not allowed.", ext))
		h.renderFoundForm(w, r, form)
		return
	}

	photos := h.savePhotos(w, r, files, h.cfg.Uploads.SaveFound)

	_, err = h.svc.CreateFound(r.Context(), CreateFoundInput{
		PetType:           form.Get("pet_type"),
		Breed:             form.Get("breed"),
		OtherBreed:        form.Get("other_breed"),
		Color:             form.Get("color"),
		Gender:            form.Get("gender"),
		Features:          form.Get("features"),
		FoundTime:         foundTime,
		FoundLocationText: form.Get("found_location_text"),
		Latitude:          lat,
		Longitude:         lng,
		ContactInfo:       form.Get("contact_info"),
		Photos:            photos,
	})
	if err != nil {
		h.cfg.Log.Error("creating found report", map[string]any{"error": err.Error()})
		h.cfg.Flash.Add(w, r, flash.LevelError, "Something went wrong saving the report, please try again.")
		h.renderFoundForm(w, r, form)
		return
	}

	h.cfg.Flash.Add(w, r, flash.LevelSuccess, "Found pet report published!")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) markFound(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "reportID"), 10, 64)
	if err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	_, changed, err := h.svc.MarkFound(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
		return
	case err != nil:
		h.cfg.Log.Error("marking report as found", map[string]any{"id": id, "error": err.Error()})
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if changed {
		h.cfg.Flash.Add(w, r, flash.LevelSuccess, "The report was marked as found!")
	} else {
		h.cfg.Flash.Add(w, r, flash.LevelInfo, "This report was already marked as found.")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) renderLostForm(w http.ResponseWriter, r *http.Request, form url.Values) {
	if form == nil {
		form = url.Values{}
	}
	h.cfg.Renderer.Render(w, "report_lost_form.html", formPageData{
		Title:      "Report a lost pet",
		Form:       form,
		BaiduMapAK: h.cfg.BaiduMapAK,
		Flashes:    h.cfg.Flash.Pop(w, r),
	})
}

func (h *Handler) renderFoundForm(w http.ResponseWriter, r *http.Request, form url.Values) {
	if form == nil {
		form = url.Values{}
	}
	h.cfg.Renderer.Render(w, "report_found_form.html", formPageData{
		Title:      "Report a found pet",
		Form:       form,
		BaiduMapAK: h.cfg.BaiduMapAK,
		Flashes:    h.cfg.Flash.Pop(w, r),
	})
}

// savePhotos guarda y normaliza cada foto. Un archivo que falla se reporta y
// se saltea; el resto del alta sigue.
func (h *Handler) savePhotos(w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader, save func(*multipart.FileHeader) (string, error)) []string {
	photos := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := save(fh)
		if err != nil {
			h.cfg.Log.Error("saving photo", map[string]any{"filename": fh.Filename, "error": err.Error()})
			h.cfg.Flash.Add(w, r, flash.LevelError, "One of the photos could not be saved.")
			continue
		}
		h.cfg.Images.Normalize(h.cfg.Uploads.Path(name))
		photos = append(photos, name)
	}
	return photos
}

func missingFields(form url.Values, required []string) []string {
	missing := make([]string, 0)
	for _, f := range required {
		if strings.TrimSpace(form.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// parseCoordinates parsea cada coordenada por separado; una inválida queda
// nil y baja ok, sin bloquear el submit.
func parseCoordinates(latStr, lngStr string) (lat, lng *float64, ok bool) {
	ok = true
	if s := strings.TrimSpace(latStr); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			lat = &v
		} else {
			ok = false
		}
	}
	if s := strings.TrimSpace(lngStr); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			lng = &v
		} else {
			ok = false
		}
	}
	return lat, lng, ok
}

func parseFoundTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range foundTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}

func photoFiles(r *http.Request) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	all := r.MultipartForm.File["photos"]
	files := make([]*multipart.FileHeader, 0, len(all))
	for _, fh := range all {
		if fh != nil && fh.Filename != "" {
			files = append(files, fh)
		}
	}
	return files
}

func checkExtensions(s *uploads.Saver, files []*multipart.FileHeader) (string, bool) {
	for _, fh := range files {
		if ext, ok := s.Allowed(fh.Filename); !ok {
			return ext, false
		}
	}
	return "", true
}
