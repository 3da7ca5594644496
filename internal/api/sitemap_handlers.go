package api

import (
	"encoding/xml"
	"net/http"

	"github.com/shopfinder/shopfinder-server/internal/http/response"
	"github.com/shopfinder/shopfinder-server/internal/slug"
)

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// handleSitemap renders the sitemap from the current snapshot: one URL per
// listing slug plus the state and city browse pages.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	base := s.publicBaseURL()

	slugs, err := s.services.Directory.SitemapSlugs(ctx)
	if err != nil {
		s.logger.Error("sitemap generation failed", "error", err)
		response.ServiceUnavailable(w, "Listing data is temporarily unavailable", s.logger)
		return
	}
	states, err := s.services.Directory.States(ctx)
	if err != nil {
		response.ServiceUnavailable(w, "Listing data is temporarily unavailable", s.logger)
		return
	}
	cities, err := s.services.Directory.Cities(ctx)
	if err != nil {
		response.ServiceUnavailable(w, "Listing data is temporarily unavailable", s.logger)
		return
	}

	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, 1+len(states)+len(cities)+len(slugs)),
	}
	set.URLs = append(set.URLs, sitemapURL{Loc: base + "/", ChangeFreq: "daily"})
	for _, state := range states {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + "/states/" + slug.Make(state), ChangeFreq: "weekly"})
	}
	for _, c := range cities {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + "/cities/" + slug.Make(c.City+" "+c.State), ChangeFreq: "weekly"})
	}
	for _, sl := range slugs {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + "/listings/" + sl, ChangeFreq: "weekly"})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		s.logger.Error("sitemap encoding failed", "error", err)
	}
}

// publicBaseURL returns the configured public URL without a trailing slash,
// falling back to a localhost URL built from the server port.
func (s *Server) publicBaseURL() string {
	base := s.config.Server.PublicURL
	if base == "" {
		return "http://localhost:" + s.config.Server.Port
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base
}
