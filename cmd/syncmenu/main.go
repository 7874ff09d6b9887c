// syncmenu publica el menú de la cuenta oficial de WeChat apuntando al sitio
// configurado. Se corre una vez después de cada cambio de menú.
package main

import (
	"context"
	"log"
	"time"

	"pet-lost-found/internal/adapters/wechatapi"
	"pet-lost-found/internal/config"
	"pet-lost-found/internal/domain/wechat"
)

func main() {
	cfg := config.Load()

	client, err := wechatapi.NewClient(wechatapi.Config{
		AppID:     cfg.WechatAppID,
		AppSecret: cfg.WechatAppSecret,
	})
	if err != nil {
		log.Fatalf("building wechat client: %v", err)
	}
	if !client.IsConfigured() {
		log.Fatal("WECHAT_APPID / WECHAT_APPSECRET not set")
	}

	menu := wechatapi.Menu{
		Buttons: []wechatapi.Button{
			{Type: "click", Name: "Latest reports", Key: wechat.KeyLatestReports},
			{Type: "click", Name: "Lost a pet", Key: wechat.KeyReportLost},
			{Type: "click", Name: "Found a pet", Key: wechat.KeyReportFound},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.CreateMenu(ctx, menu); err != nil {
		log.Fatalf("creating menu: %v", err)
	}
	log.Println("menu synced")
}
