package fetcher

import (
	"bytes"
	"errors"
	"net/http"
)

// ErrBlocked is returned when the site served an anti-bot page instead of
// content. Pages that need a browser to render are reported the same way.
var ErrBlocked = errors.New("fetcher: blocked by anti-bot protection")

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// interstitialMaxBytes bounds the body size checked for captcha and JS-shell
// markers. Real disclosure pages are far larger.
const interstitialMaxBytes = 20000

// DetectBlockHeaders checks a non-200 response for an edge-proxy block.
func DetectBlockHeaders(status int, h http.Header) BlockType {
	if status != http.StatusForbidden && status != http.StatusServiceUnavailable {
		return BlockNone
	}
	if h.Get("cf-ray") != "" || h.Get("cf-cache-status") != "" || h.Get("server") == "cloudflare" {
		return BlockCloudflare
	}
	return BlockNone
}

// DetectBlockBody checks a 200 body for challenge and captcha pages.
func DetectBlockBody(body []byte) BlockType {
	lower := bytes.ToLower(body)

	if bytes.Contains(lower, []byte("checking your browser")) ||
		bytes.Contains(lower, []byte("cf-browser-verification")) {
		return BlockCloudflare
	}
	if len(body) >= interstitialMaxBytes {
		return BlockNone
	}
	if bytes.Contains(lower, []byte("cloudflare")) && bytes.Contains(lower, []byte("challenge")) {
		return BlockCloudflare
	}
	if bytes.Contains(lower, []byte("captcha")) {
		return BlockCaptcha
	}
	if bytes.Contains(lower, []byte("<noscript")) && bytes.Contains(lower, []byte("enable javascript")) {
		return BlockJSShell
	}
	return BlockNone
}
