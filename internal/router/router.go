package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	mem "pet-lost-found/internal/adapters/storage/memory"
	"pet-lost-found/internal/adapters/storage/sqldb"
	"pet-lost-found/internal/config"
	"pet-lost-found/internal/domain/reports"
	"pet-lost-found/internal/domain/wechat"
	"pet-lost-found/internal/platform/flash"
	"pet-lost-found/internal/platform/images"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/platform/uploads"
	"pet-lost-found/internal/web"
)

type Options struct {
	Config config.Config
	Log    logger.Logger

	// Opcional: si viene, se usa esta conexión. Si no, se intenta por DSN de
	// config y se cae a in-memory (modo dev).
	DB *sqlx.DB
}

func NewRouter(opts Options) (http.Handler, error) {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	var (
		lostRepo  reports.LostRepository
		foundRepo reports.FoundRepository
	)

	db := opts.DB
	if db == nil && cfg.DBDSN != "" {
		opened, err := sqldb.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			log.Warn("opening database, falling back to in-memory store", map[string]any{
				"driver": cfg.DBDriver,
				"error":  err.Error(),
			})
		} else {
			db = opened
		}
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sqldb.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		lostRepo = sqldb.NewLostRepo(db)
		foundRepo = sqldb.NewFoundRepo(db)
	} else {
		lostRepo = mem.NewLostRepo()
		foundRepo = mem.NewFoundRepo()
	}

	renderer, err := web.NewRenderer(log)
	if err != nil {
		return nil, err
	}

	saver, err := uploads.NewSaver(cfg.UploadDir, cfg.AllowedExtensions)
	if err != nil {
		return nil, err
	}

	svc := reports.NewService(lostRepo, foundRepo)

	reportsHandler := reports.NewHandler(svc, reports.HandlerConfig{
		Renderer:       renderer,
		Flash:          flash.NewStore(cfg.SessionSecret),
		Uploads:        saver,
		Images:         images.NewNormalizer(images.DefaultMaxWidth, images.DefaultJPEGQuality, log),
		MaxUploadBytes: cfg.MaxUploadBytes,
		TencentMapKey:  cfg.TencentMapKey,
		BaiduMapAK:     cfg.BaiduMapAK,
		Log:            log,
	})
	reports.RegisterRoutes(r, reportsHandler)

	wechatHandler := wechat.NewHandler(cfg.WechatToken, wechat.DefaultActions(cfg.SiteBaseURL), log)
	wechat.RegisterRoutes(r, wechatHandler)

	// fotos subidas, servidas estáticas; el resto de /static sale del binario
	r.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/",
		http.FileServer(http.Dir(saver.Dir()))))
	r.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	return r, nil
}
