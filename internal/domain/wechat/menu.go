package wechat

import "strings"

// Claves de los botones CLICK del menú de la cuenta oficial. Tienen que
// coincidir con el menú publicado vía la API (ver cmd/syncmenu).
const (
	KeyLatestReports = "MENU_LATEST_REPORTS"
	KeyReportLost    = "MENU_REPORT_LOST"
	KeyReportFound   = "MENU_REPORT_FOUND"
)

// MenuAction es el artículo que se responde ante un click de menú.
type MenuAction struct {
	Title       string
	Description string
	PicURL      string
	URL         string
}

// DefaultActions arma la tabla estática key -> artículo, con los links
// apuntando al sitio público.
func DefaultActions(siteBaseURL string) map[string]MenuAction {
	base := strings.TrimRight(siteBaseURL, "/")

	return map[string]MenuAction{
		KeyLatestReports: {
			Title:       "Latest lost & found pets",
			Description: "Browse the most recent reports in your area.",
			PicURL:      base + "/static/banner.png",
			URL:         base + "/",
		},
		KeyReportLost: {
			Title:       "My pet is missing",
			Description: "Publish a lost pet report with photos and a map pin.",
			PicURL:      base + "/static/banner.png",
			URL:         base + "/report/lost",
		},
		KeyReportFound: {
			Title:       "I found a pet",
			Description: "Publish a found pet report so the owner can reach you.",
			PicURL:      base + "/static/banner.png",
			URL:         base + "/report/found",
		},
	}
}
