package wechat

import "encoding/xml"

const (
	MsgTypeText  = "text"
	MsgTypeEvent = "event"
	MsgTypeNews  = "news"

	// subtipo de evento que manda la plataforma cuando el usuario toca un
	// botón del menú
	EventClick = "CLICK"
)

// CDATA fuerza el wrapping <![CDATA[...]]> que exige el formato de la
// plataforma.
type CDATA struct {
	Text string `xml:",cdata"`
}

// Message es el sobre entrante. Los campos que aplican dependen de MsgType:
// Event/EventKey para eventos, Content para mensajes de texto.
type Message struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   string   `xml:"ToUserName"`
	FromUserName string   `xml:"FromUserName"`
	CreateTime   int64    `xml:"CreateTime"`
	MsgType      string   `xml:"MsgType"`

	Event    string `xml:"Event"`
	EventKey string `xml:"EventKey"`

	Content string `xml:"Content"`
}

// Article es una entrada de la respuesta tipo "news".
type Article struct {
	Title       CDATA `xml:"Title"`
	Description CDATA `xml:"Description"`
	PicURL      CDATA `xml:"PicUrl"`
	URL         CDATA `xml:"Url"`
}

type articleList struct {
	Items []Article `xml:"item"`
}

// NewsReply es el sobre saliente con artículos. To/From van invertidos
// respecto del mensaje entrante.
type NewsReply struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   CDATA    `xml:"ToUserName"`
	FromUserName CDATA    `xml:"FromUserName"`
	CreateTime   int64    `xml:"CreateTime"`
	MsgType      CDATA    `xml:"MsgType"`
	ArticleCount int      `xml:"ArticleCount"`
	Articles     articleList `xml:"Articles"`
}

// NewNewsReply arma la respuesta de un solo artículo para un mensaje dado.
func NewNewsReply(in Message, createTime int64, a Article) NewsReply {
	return NewsReply{
		ToUserName:   CDATA{in.FromUserName},
		FromUserName: CDATA{in.ToUserName},
		CreateTime:   createTime,
		MsgType:      CDATA{MsgTypeNews},
		ArticleCount: 1,
		Articles:     articleList{Items: []Article{a}},
	}
}
