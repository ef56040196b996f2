package blogcore

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feather/blogcore/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Author      string `xml:"author,omitempty"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// postTime parses the stored publish date, which is either a full
// timestamp or a bare day.
func postTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (a *App) renderRSS(c echo.Context, rows []views.PostRow) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(rows))
	for _, r := range rows {
		pubDate := ""
		if t, ok := postTime(r.Post.Date); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := ArticleURL(base, r.Post.ID)
		items = append(items, rssItem{
			Title:       r.Post.Title,
			Link:        link,
			Author:      r.AuthorLogin,
			Description: r.Post.Abstract,
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
