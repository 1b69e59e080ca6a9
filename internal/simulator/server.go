// Package simulator serves a small in-memory imitation of the wiki
// action API, enough for the panel to poll against during development
// and in end-to-end tests.
package simulator

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Server exposes the simulated api.php endpoint.
type Server struct {
	addr   string
	feed   *Feed
	server *http.Server
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	options map[string]string
}

// NewServer creates a simulator server over the given feed.
func NewServer(addr string, feed *Feed) *Server {
	if addr == "" {
		addr = "127.0.0.1:8484"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    addr,
		feed:    feed,
		ctx:     ctx,
		cancel:  cancel,
		options: make(map[string]string),
	}
}

// Handler builds the gin engine. Exposed separately so tests can mount
// it on an httptest server.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api.php", s.handleAPI)
	r.POST("/api.php", s.handleAPI)

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Option returns the stored value of a per-user option.
func (s *Server) Option(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.options[name]
	return v, ok
}

func (s *Server) handleAPI(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		action = c.PostForm("action")
	}
	switch action {
	case "query":
		s.handleQuery(c)
	case "options":
		s.handleOptions(c)
	default:
		c.JSON(http.StatusOK, gin.H{"error": gin.H{
			"code": "unknown_action",
			"info": "unrecognized value for parameter action",
		}})
	}
}

func (s *Server) handleQuery(c *gin.Context) {
	if c.Query("meta") == "siteinfo" {
		s.handleSiteInfo(c)
		return
	}

	list := c.Query("list")
	var prefix string
	switch list {
	case "recentchanges":
		prefix = "rc"
	case "watchlist":
		prefix = "wl"
	default:
		c.JSON(http.StatusOK, gin.H{"error": gin.H{
			"code": "unknown_list",
			"info": "unrecognized value for parameter list",
		}})
		return
	}

	q := Query{
		UnpatrolledOnly: strings.Contains(c.Query(prefix+"show"), "!patrolled"),
		Newest:          c.Query(prefix+"dir") == "newer",
		Limit:           50,
	}
	if types := c.Query(prefix + "type"); types != "" {
		q.Kinds = make(map[string]bool)
		for _, t := range strings.Split(types, "|") {
			q.Kinds[t] = true
		}
	}
	if raw := c.Query(prefix + "namespace"); raw != "" {
		q.Namespaces = make(map[int]bool)
		for _, part := range strings.Split(raw, "|") {
			if id, err := strconv.Atoi(part); err == nil {
				q.Namespaces[id] = true
			}
		}
	}
	if raw := c.Query(prefix + "limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.Limit = n
		}
	}

	items := make([]gin.H, 0)
	for _, ch := range s.feed.Select(q) {
		tags := ch.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, gin.H{
			"type":      ch.Type,
			"ns":        ch.Namespace,
			"title":     ch.Title,
			"revid":     ch.RevID,
			"old_revid": ch.OldRevID,
			"timestamp": ch.Timestamp.UTC().Format(time.RFC3339),
			"oldlen":    ch.OldLen,
			"newlen":    ch.NewLen,
			"tags":      tags,
		})
	}

	c.JSON(http.StatusOK, gin.H{"query": gin.H{list: items}})
}

func (s *Server) handleSiteInfo(c *gin.Context) {
	out := make(gin.H, len(namespaces))
	for _, ns := range namespaces {
		entry := gin.H{"id": ns.ID, "name": ns.Name}
		if ns.Content {
			entry["content"] = true
		}
		out[strconv.Itoa(ns.ID)] = entry
	}
	c.JSON(http.StatusOK, gin.H{"query": gin.H{"namespaces": out}})
}

func (s *Server) handleOptions(c *gin.Context) {
	name := c.PostForm("optionname")
	if name == "" {
		c.JSON(http.StatusOK, gin.H{"error": gin.H{
			"code": "missing_param",
			"info": "the optionname parameter must be set",
		}})
		return
	}

	s.mu.Lock()
	s.options[name] = c.PostForm("optionvalue")
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"options": "success"})
}
