package flash

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "plf_session"

const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Notice es un aviso transitorio que sobrevive un redirect (cookie de sesión).
type Notice struct {
	Level   string
	Message string
}

func init() {
	// securecookie serializa con gob
	gob.Register(Notice{})
}

// Store maneja los avisos flash sobre una cookie firmada.
type Store struct {
	sessions *sessions.CookieStore
}

func NewStore(secret string) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // cookie de sesión
		HttpOnly: true,
	}
	return &Store{sessions: cs}
}

// Add encola un aviso. Los errores de cookie no cortan el request.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, level, message string) {
	sess, _ := s.sessions.Get(r, sessionName)
	sess.AddFlash(Notice{Level: level, Message: message})
	_ = sess.Save(r, w)
}

// Pop devuelve y consume los avisos pendientes, incluidos los agregados en
// este mismo request (gorilla cachea la sesión por request).
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Notice {
	sess, _ := s.sessions.Get(r, sessionName)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save(r, w)

	out := make([]Notice, 0, len(raw))
	for _, v := range raw {
		if n, ok := v.(Notice); ok {
			out = append(out, n)
		}
	}
	return out
}
