package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go-newspulse/internal/model"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func rssFixture(now time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Tech Wire</title>
  <link>https://example.com</link>
  <language>en</language>
  <item>
    <title>AI breakthrough announced</title>
    <link>https://www.example.com/ai/?utm_source=rss</link>
    <description><![CDATA[<p>Researchers <b>unveil</b> a model <img src="https://img.example.com/ai.png"/></p>]]></description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Local team wins championship</title>
    <link>https://example.com/team</link>
    <description>Fans celebrate downtown.</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>   </title>
    <link>https://example.com/untitled</link>
  </item>
</channel>
</rss>`, now.Add(-time.Hour).Format(time.RFC1123Z), now.Add(-30*time.Hour).Format(time.RFC1123Z))
}

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Market Watch</title>
  <id>urn:market-watch</id>
  <updated>2024-05-01T10:00:00Z</updated>
  <entry>
    <title>Market crashes amid crisis</title>
    <link href="https://markets.example.com/crash"/>
    <id>urn:market-watch:1</id>
    <updated>2024-05-01T10:00:00Z</updated>
    <summary>Stocks slump worldwide.</summary>
  </entry>
</feed>`

type feedServer struct {
	*httptest.Server
	hits atomic.Int32
}

// newFeedServer serves /rss, /atom, /slow (never answers in time), /error (500) and
// /broken (not a feed).
func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{}
	now := time.Now()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFixture(now))
	})
	mux.HandleFunc("/atom", func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, atomFixture)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		fmt.Fprint(w, "this is not a feed")
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) source(id, path, category string) model.Source {
	return model.Source{ID: id, Name: id, URL: fs.URL + path, Category: category}
}
