package blogcore

import (
	"net/url"
	"os"
	"path"
	"strconv"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// ArticleURL returns the absolute link to an article under base.
func ArticleURL(base string, id int64) string {
	return BuildURL(base, "detail") + "?id=" + strconv.FormatInt(id, 10)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
