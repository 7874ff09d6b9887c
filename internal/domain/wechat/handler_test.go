package wechat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-lost-found/internal/platform/logger"
)

const testToken = "s3cret-token"

func newTestHandler() *Handler {
	h := NewHandler(testToken, DefaultActions("http://example.com"), logger.New(logger.Options{Level: logger.Error}))
	h.now = func() time.Time { return time.Unix(1700000000, 0) }
	return h
}

func verifyURL(signature, timestamp, nonce, echostr string) string {
	return "/wechat?signature=" + signature + "&timestamp=" + timestamp + "&nonce=" + nonce + "&echostr=" + echostr
}

func TestVerify_EchoesChallenge(t *testing.T) {
	h := newTestHandler()

	sig := Signature(testToken, "1700000000", "abc123")
	req := httptest.NewRequest(http.MethodGet, verifyURL(sig, "1700000000", "abc123", "hello-world"), nil)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello-world", rec.Body.String())
}

func TestVerify_BadSignature(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, verifyURL("deadbeef", "1700000000", "abc123", "hello"), nil)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hello")
}

func TestVerify_MissingParams(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/wechat?signature=x&timestamp=1700000000", nil)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerify_NoTokenConfigured(t *testing.T) {
	h := NewHandler("  ", nil, logger.New(logger.Options{Level: logger.Error}))

	sig := Signature("", "1700000000", "abc123")
	req := httptest.NewRequest(http.MethodGet, verifyURL(sig, "1700000000", "abc123", "hello"), nil)
	rec := httptest.NewRecorder()

	h.Verify(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSignature_OrderIndependent(t *testing.T) {
	// la firma depende del orden lexicográfico, no del orden de los argumentos
	assert.Equal(t,
		Signature("b", "a", "c"),
		Signature("b", "c", "a"),
	)
}

func TestDeliver_MenuClick_RepliesNews(t *testing.T) {
	h := newTestHandler()

	body := `<xml>
  <ToUserName><![CDATA[official_account]]></ToUserName>
  <FromUserName><![CDATA[follower_42]]></FromUserName>
  <CreateTime>1700000000</CreateTime>
  <MsgType><![CDATA[event]]></MsgType>
  <Event><![CDATA[CLICK]]></Event>
  <EventKey><![CDATA[MENU_REPORT_LOST]]></EventKey>
</xml>`

	req := httptest.NewRequest(http.MethodPost, "/wechat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Deliver(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	out := rec.Body.String()
	// To/From invertidos respecto del entrante
	assert.Contains(t, out, "<ToUserName><![CDATA[follower_42]]></ToUserName>")
	assert.Contains(t, out, "<FromUserName><![CDATA[official_account]]></FromUserName>")
	assert.Contains(t, out, "<MsgType><![CDATA[news]]></MsgType>")
	assert.Contains(t, out, "<ArticleCount>1</ArticleCount>")
	assert.Contains(t, out, "My pet is missing")
	assert.Contains(t, out, "http://example.com/report/lost")
}

func TestDeliver_UnknownMenuKey(t *testing.T) {
	h := newTestHandler()

	body := `<xml>
  <ToUserName><![CDATA[official_account]]></ToUserName>
  <FromUserName><![CDATA[follower_42]]></FromUserName>
  <CreateTime>1700000000</CreateTime>
  <MsgType><![CDATA[event]]></MsgType>
  <Event><![CDATA[CLICK]]></Event>
  <EventKey><![CDATA[MENU_DOES_NOT_EXIST]]></EventKey>
</xml>`

	req := httptest.NewRequest(http.MethodPost, "/wechat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Deliver(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeliver_TextMessage(t *testing.T) {
	h := newTestHandler()

	body := `<xml>
  <ToUserName><![CDATA[official_account]]></ToUserName>
  <FromUserName><![CDATA[follower_42]]></FromUserName>
  <CreateTime>1700000000</CreateTime>
  <MsgType><![CDATA[text]]></MsgType>
  <Content><![CDATA[hola]]></Content>
</xml>`

	req := httptest.NewRequest(http.MethodPost, "/wechat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Deliver(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeliver_MalformedXML(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/wechat", strings.NewReader("this is not xml"))
	rec := httptest.NewRecorder()

	h.Deliver(rec, req)

	// la plataforma reintenta ante no-2xx, así que el parseo roto responde 200
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}
