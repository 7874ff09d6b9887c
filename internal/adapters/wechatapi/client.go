package wechatapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"pet-lost-found/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("wechat client not configured")
	ErrUpstream      = errors.New("wechat upstream error")
)

const defaultBaseURL = "https://api.weixin.qq.com"

// Config del cliente de la API oficial. AppID/AppSecret vienen de env en el
// proceso que lo instancie.
type Config struct {
	AppID     string
	AppSecret string

	// Opcional: override del host de la API (tests).
	BaseURL string

	Timeout time.Duration
}

type Client struct {
	appID     string
	appSecret string
	http      *httpclient.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		appID:     strings.TrimSpace(cfg.AppID),
		appSecret: strings.TrimSpace(cfg.AppSecret),
		http:      hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.appID != "" && c.appSecret != ""
}

// apiError es el sobre de error estándar de la plataforma; errcode 0 es ok.
type apiError struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (e apiError) ok() bool { return e.ErrCode == 0 }

// AccessToken devuelve un token válido, cacheado hasta poco antes de su
// expiración (la plataforma los emite por ~2 horas).
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var out struct {
		apiError
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	path := "/cgi-bin/token?grant_type=client_credential&appid=" + url.QueryEscape(c.appID) +
		"&secret=" + url.QueryEscape(c.appSecret)
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !out.ok() || out.AccessToken == "" {
		return "", fmt.Errorf("%w: errcode=%d errmsg=%s", ErrUpstream, out.ErrCode, out.ErrMsg)
	}

	c.token = out.AccessToken
	// margen de 60s para no usar un token al borde de expirar
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn-60) * time.Second)

	return c.token, nil
}

// Menu es el payload de /cgi-bin/menu/create.
type Menu struct {
	Buttons []Button `json:"button"`
}

type Button struct {
	Type       string   `json:"type,omitempty"` // click | view
	Name       string   `json:"name"`
	Key        string   `json:"key,omitempty"`
	URL        string   `json:"url,omitempty"`
	SubButtons []Button `json:"sub_button,omitempty"`
}

// CreateMenu publica el menú de la cuenta oficial.
func (c *Client) CreateMenu(ctx context.Context, menu Menu) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var out apiError
	path := "/cgi-bin/menu/create?access_token=" + url.QueryEscape(token)
	if err := c.http.DoJSON(ctx, http.MethodPost, path, menu, &out); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !out.ok() {
		return fmt.Errorf("%w: errcode=%d errmsg=%s", ErrUpstream, out.ErrCode, out.ErrMsg)
	}
	return nil
}
