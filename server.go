package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/andybalholm/brotli"
)

const maxPerPage = 200

// SearchPage is the body served by /search.
type SearchPage struct {
	Page      int    `json:"page"`
	PerPage   int    `json:"perPage"`
	Total     int    `json:"total"`
	TotalHits int    `json:"totalHits"`
	Hits      []*Hit `json:"hits"`
}

type ApiResult struct {
	Num  int
	Page PageSrc
	Resp *ImageResponse
	Err  error
}

// Server re-pages upstream search results to its own page size.
type Server struct {
	api          ImageSearcher
	key          string
	upstreamSize int
	pageSize     int
	pretty       bool
	log          *log.Logger
}

func NewServer(cfg *Config, api ImageSearcher, upstreamSize int) *Server {
	pageSize := cfg.Server.PageSize
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return &Server{
		api:          api,
		key:          cfg.Pixabay.Key,
		upstreamSize: upstreamSize,
		pageSize:     pageSize,
		pretty:       cfg.Debug.PrettyJson,
		log:          newLogger("(server) "),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	})
	mux.HandleFunc("/search", s.search)
	return mux
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil || page < 1 {
		http.Error(w, "Query parameter ?page= must be a positive integer", http.StatusBadRequest)
		return
	}
	perPage, err := intParam(r, "per_page", s.pageSize)
	if err != nil || perPage < 1 || perPage > maxPerPage {
		http.Error(w, fmt.Sprintf("Query parameter ?per_page= must be between 1 and %d", maxPerPage), http.StatusBadRequest)
		return
	}

	srcs := GetResPages(page, perPage, s.upstreamSize)
	chRes := make(chan ApiResult, len(srcs))
	for num, src := range srcs {
		go func() {
			resp, err := s.api.SearchImages(r.Context(), s.key, src.Page)
			chRes <- ApiResult{Num: num, Page: src, Resp: resp, Err: err}
		}()
	}

	results := make([]ApiResult, len(srcs))
	for range srcs {
		res := <-chRes
		results[res.Num] = res
	}

	out := SearchPage{Page: page, PerPage: perPage, Hits: []*Hit{}}
	for _, res := range results {
		if res.Err != nil {
			s.upstreamError(w, res.Err)
			return
		}
		out.Total = res.Resp.Total
		out.TotalHits = res.Resp.TotalHits
		first := min(len(res.Resp.Hits), res.Page.First)
		last := min(len(res.Resp.Hits), res.Page.Last)
		out.Hits = append(out.Hits, res.Resp.Hits[first:last]...)
	}

	w.Header().Set("Content-Type", "application/json")
	body := brotli.HTTPCompressor(w, r)
	defer body.Close()
	enc := json.NewEncoder(body)
	indent := ""
	if s.pretty {
		indent = "  "
	}
	enc.SetIndent("", indent)
	if err := enc.Encode(out); err != nil {
		s.log.Println("Failed to write response", err.Error())
	}
}

func (s *Server) upstreamError(w http.ResponseWriter, err error) {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		s.log.Println("Upstream rejected request:", apiErr.StatusCode)
		http.Error(w, fmt.Sprintf("Upstream returned status %d", apiErr.StatusCode), http.StatusBadGateway)
		return
	}
	s.log.Println("Error connecting to upstream services:", err.Error())
	http.Error(w, "Error connecting to upstream services", http.StatusServiceUnavailable)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
