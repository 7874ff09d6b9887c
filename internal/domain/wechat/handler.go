package wechat

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-lost-found/internal/platform/logger"
)

const maxBodyBytes = 1 << 20

// Handler atiende el webhook de la cuenta oficial. Sin estado entre requests:
// solo el token compartido y la tabla de acciones de menú.
type Handler struct {
	token   string
	actions map[string]MenuAction
	now     func() time.Time
	log     logger.Logger
}

func NewHandler(token string, actions map[string]MenuAction, log logger.Logger) *Handler {
	return &Handler{
		token:   strings.TrimSpace(token),
		actions: actions,
		now:     time.Now,
		log:     log,
	}
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/wechat", h.Verify)
	r.Post("/wechat", h.Deliver)
}

// Signature calcula la firma del handshake: sha1 hex de token, timestamp y
// nonce ordenados lexicográficamente y concatenados.
func Signature(token, timestamp, nonce string) string {
	vals := []string{token, timestamp, nonce}
	sort.Strings(vals)
	sum := sha1.Sum([]byte(strings.Join(vals, "")))
	return hex.EncodeToString(sum[:])
}

// Verify responde el handshake de verificación de URL (GET). La plataforma
// espera el echostr tal cual si la firma cierra.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if h.token == "" {
		http.Error(w, "wechat token not configured", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	signature := q.Get("signature")
	timestamp := q.Get("timestamp")
	nonce := q.Get("nonce")
	echostr := q.Get("echostr")
	if signature == "" || timestamp == "" || nonce == "" || echostr == "" {
		http.Error(w, "missing verification parameters", http.StatusBadRequest)
		return
	}

	if Signature(h.token, timestamp, nonce) != signature {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	_, _ = w.Write([]byte(echostr))
}

// Deliver procesa un mensaje entrante (POST). La plataforma reintenta ante
// cualquier respuesta que no sea 2xx dentro de su timeout, así que los
// errores de parseo se responden como "success" igual.
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.log.Warn("reading webhook body", map[string]any{"error": err.Error()})
		h.writeSuccess(w)
		return
	}

	var msg Message
	if err := xml.Unmarshal(body, &msg); err != nil {
		h.log.Warn("unparseable webhook message", map[string]any{"error": err.Error()})
		h.writeSuccess(w)
		return
	}

	if msg.MsgType == MsgTypeEvent && msg.Event == EventClick {
		if action, ok := h.actions[msg.EventKey]; ok {
			h.writeNewsReply(w, msg, action)
			return
		}
		h.log.Debug("unknown menu key", map[string]any{"key": msg.EventKey})
	}

	// texto, eventos sin acción, etc.: alcanza con un 200 con body vacío
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeNewsReply(w http.ResponseWriter, in Message, action MenuAction) {
	reply := NewNewsReply(in, h.now().Unix(), Article{
		Title:       CDATA{action.Title},
		Description: CDATA{action.Description},
		PicURL:      CDATA{action.PicURL},
		URL:         CDATA{action.URL},
	})

	b, err := xml.Marshal(reply)
	if err != nil {
		h.log.Error("marshaling news reply", map[string]any{"error": err.Error()})
		h.writeSuccess(w)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(b)
}

func (h *Handler) writeSuccess(w http.ResponseWriter) {
	_, _ = w.Write([]byte("success"))
}
