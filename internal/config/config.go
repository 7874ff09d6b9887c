package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del proceso. Se carga una sola vez en el
// arranque y se pasa por valor a los constructores; ningún componente vuelve a
// leer env en caliente.
type Config struct {
	Addr string

	// Storage: driver "pgx" o "sqlite3". Si DSN viene vacío, el router cae a
	// repos in-memory (modo dev).
	DBDriver string
	DBDSN    string

	UploadDir         string
	AllowedExtensions []string
	MaxUploadBytes    int64

	// Firma de la cookie de sesión (mensajes flash).
	SessionSecret string

	// Cuenta oficial de WeChat.
	WechatToken     string
	WechatAppID     string
	WechatAppSecret string

	// API keys de mapas que se inyectan en las plantillas.
	TencentMapKey string
	BaiduMapAK    string

	// URL pública del sitio; se usa para armar los links del menú de WeChat.
	SiteBaseURL string
}

// Load lee la configuración desde env. Si existe un .env en el cwd lo carga
// primero (mismo contrato que tenía el deploy original).
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:              ":" + getEnvOrDefault("PORT", "8080"),
		DBDriver:          getEnvOrDefault("DB_DRIVER", "sqlite3"),
		DBDSN:             os.Getenv("DB_DSN"),
		UploadDir:         getEnvOrDefault("UPLOAD_DIR", "static/uploads"),
		AllowedExtensions: splitList(getEnvOrDefault("ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif")),
		MaxUploadBytes:    getEnvAsInt64OrDefault("MAX_UPLOAD_BYTES", 16<<20),
		SessionSecret:     getEnvOrDefault("SECRET_KEY", "a-hard-to-guess-string"),
		WechatToken:       os.Getenv("WECHAT_TOKEN"),
		WechatAppID:       os.Getenv("WECHAT_APPID"),
		WechatAppSecret:   os.Getenv("WECHAT_APPSECRET"),
		TencentMapKey:     os.Getenv("TENCENT_MAP_API_KEY"),
		BaiduMapAK:        os.Getenv("BAIDU_MAP_AK"),
		SiteBaseURL:       getEnvOrDefault("SITE_BASE_URL", "http://localhost:8080"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
