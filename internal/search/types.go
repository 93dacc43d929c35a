package search

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

// Time ranges accepted by SearXNG.
const (
	TimeRangeDay   = "day"
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
)

// MaxPage bounds pagination requests.
const MaxPage = 50

// Query is one search request.
type Query struct {
	Text       string
	Category   string // domain.Category*
	Page       int
	Language   string
	SafeSearch int
	TimeRange  string
}

// Normalize trims the text and fills defaults.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	if !domain.IsCategory(q.Category) {
		q.Category = domain.CategoryWeb
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Language == "" || q.Language == "auto" {
		q.Language = "all"
	}
	if q.SafeSearch < domain.SafeSearchOff || q.SafeSearch > domain.SafeSearchStrict {
		q.SafeSearch = domain.SafeSearchModerate
	}
	switch q.TimeRange {
	case TimeRangeDay, TimeRangeMonth, TimeRangeYear:
	default:
		q.TimeRange = ""
	}
	return q
}

// upstreamCategory maps our categories to SearXNG's.
func upstreamCategory(c string) string {
	if c == domain.CategoryWeb {
		return "general"
	}
	return c
}

// Result is one search hit.
type Result struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Content       string     `json:"content,omitempty"`
	Engine        string     `json:"engine,omitempty"`
	Engines       []string   `json:"engines,omitempty"`
	Score         float64    `json:"score,omitempty"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	ImageSrc      string     `json:"imgSrc,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
}

// Infobox is a knowledge panel returned next to the results.
type Infobox struct {
	Title   string       `json:"title"`
	Content string       `json:"content,omitempty"`
	ImgSrc  string       `json:"imgSrc,omitempty"`
	URLs    []InfoboxURL `json:"urls,omitempty"`
	Engine  string       `json:"engine,omitempty"`
}

// InfoboxURL is a link of an infobox.
type InfoboxURL struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Response is the normalized search response.
type Response struct {
	Query           string    `json:"query"`
	Category        string    `json:"category"`
	Page            int       `json:"page"`
	NumberOfResults int       `json:"numberOfResults"`
	Results         []Result  `json:"results"`
	Answers         []string  `json:"answers"`
	Suggestions     []string  `json:"suggestions"`
	Corrections     []string  `json:"corrections"`
	Infoboxes       []Infobox `json:"infoboxes"`
	Cached          bool      `json:"cached"`
}

// apiResponse is the SearXNG JSON format.
type apiResponse struct {
	Query           string       `json:"query"`
	NumberOfResults float64      `json:"number_of_results"`
	Results         []apiResult  `json:"results"`
	Answers         []apiAnswer  `json:"answers"`
	Corrections     []string     `json:"corrections"`
	Infoboxes       []apiInfobox `json:"infoboxes"`
	Suggestions     []string     `json:"suggestions"`
}

type apiResult struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	PublishedDate string   `json:"publishedDate"`
	Engine        string   `json:"engine"`
	Engines       []string `json:"engines"`
	Score         float64  `json:"score"`
	Thumbnail     string   `json:"thumbnail"`
	ThumbnailSrc  string   `json:"thumbnail_src"`
	ImgSrc        string   `json:"img_src"`
}

// apiAnswer accepts both plain strings and {"answer": "..."} objects,
// depending on the SearXNG version.
type apiAnswer struct {
	Answer string
}

func (a *apiAnswer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Answer = s
		return nil
	}
	var obj struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Answer = obj.Answer
	return nil
}

type apiInfobox struct {
	Infobox string `json:"infobox"`
	Content string `json:"content"`
	ImgSrc  string `json:"img_src"`
	Engine  string `json:"engine"`
	URLs    []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"urls"`
}

// parsePublishedDate parses a published date string
func parsePublishedDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}

	return nil
}

func toResponse(q Query, r apiResponse) Response {
	out := Response{
		Query:           q.Text,
		Category:        q.Category,
		Page:            q.Page,
		NumberOfResults: int(r.NumberOfResults),
		Results:         make([]Result, 0, len(r.Results)),
		Answers:         make([]string, 0, len(r.Answers)),
		Suggestions:     nonNil(r.Suggestions),
		Corrections:     nonNil(r.Corrections),
		Infoboxes:       make([]Infobox, 0, len(r.Infoboxes)),
	}

	seen := make(map[string]struct{}, len(r.Results))
	for _, row := range r.Results {
		link := strings.TrimSpace(row.URL)
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		thumb := row.Thumbnail
		if thumb == "" {
			thumb = row.ThumbnailSrc
		}
		out.Results = append(out.Results, Result{
			URL:           link,
			Title:         strings.TrimSpace(row.Title),
			Content:       strings.TrimSpace(row.Content),
			Engine:        row.Engine,
			Engines:       row.Engines,
			Score:         row.Score,
			Thumbnail:     thumb,
			ImageSrc:      row.ImgSrc,
			PublishedDate: parsePublishedDate(row.PublishedDate),
		})
	}

	for _, a := range r.Answers {
		if s := strings.TrimSpace(a.Answer); s != "" {
			out.Answers = append(out.Answers, s)
		}
	}

	for _, ib := range r.Infoboxes {
		box := Infobox{Title: ib.Infobox, Content: ib.Content, ImgSrc: ib.ImgSrc, Engine: ib.Engine}
		for _, u := range ib.URLs {
			box.URLs = append(box.URLs, InfoboxURL{Title: u.Title, URL: u.URL})
		}
		out.Infoboxes = append(out.Infoboxes, box)
	}

	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
