package images

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
)

func TestSearchImages(t *testing.T) {
	var imageHost string
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got == "" {
			t.Fatal("missing q param")
		}
		fmt.Fprintf(w, `<html><body>
<a class="iusc" m='{"murl":"%s/one.jpg"}'></a>
<a class="iusc" m='{"murl":"%s/one.jpg"}'></a>
<a class="iusc" m='not json'></a>
<a class="iusc" m='{"murl":"%s/two.png"}'></a>
<a class="iusc" m='{"murl":"%s/three.jpg"}'></a>
</body></html>`, imageHost, imageHost, imageHost, imageHost)
	}))
	defer search.Close()
	imageHost = "http://images.example.test"

	cfg, _ := config.Load()
	f := NewFetcher(nil, cfg)
	f.SearchBaseURL = search.URL

	urls, err := f.SearchImages("parle-g biscuit product", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 {
		t.Fatalf("len=%d urls=%v", len(urls), urls)
	}
	// Duplicates collapse, the limit applies after that.
	if urls[0] != imageHost+"/one.jpg" || urls[1] != imageHost+"/two.png" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestDownload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 8192)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(payload)
		case "/tiny.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("x"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg, _ := config.Load()
	cfg.ImageMinBytes = 4096
	f := NewFetcher(nil, cfg)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "out.jpg")
	if err := f.Download(srv.URL+"/ok.jpg", target); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len(payload)) {
		t.Fatalf("size=%d", info.Size())
	}

	if err := f.Download(srv.URL+"/tiny.jpg", filepath.Join(tmp, "tiny.jpg")); err == nil {
		t.Fatal("undersized image must be rejected")
	}
	if err := f.Download(srv.URL+"/page.html", filepath.Join(tmp, "page.jpg")); err == nil {
		t.Fatal("non-image content type must be rejected")
	}
	if err := f.Download(srv.URL+"/missing.jpg", filepath.Join(tmp, "missing.jpg")); err == nil {
		t.Fatal("404 must be rejected")
	}
}
