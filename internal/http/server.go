// Package http serves the dashboard UI and the expense, budget, and
// currency endpoints over the application services.
package http

import (
	"container/list"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"tripledger/internal/core"
	"tripledger/internal/geocode"
	"tripledger/internal/rates"
	appweb "tripledger/web"
)

// LedgerService is the write-and-read surface of the expense ledger.
type LedgerService interface {
	List(ctx context.Context, owner, trip string) ([]core.ExpenseRecord, error)
	Create(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error)
	Update(ctx context.Context, rec core.ExpenseRecord) (core.ExpenseRecord, error)
	Delete(ctx context.Context, owner, id string) error
}

// BudgetService reads and writes per-user budgets.
type BudgetService interface {
	Get(ctx context.Context, owner string) core.Money
	Set(ctx context.Context, owner string, amount core.Money) error
}

// Converter exposes the currency normalizer to the converter widget.
type Converter interface {
	Base() string
	RatesFor(ctx context.Context) rates.Snapshot
}

// Authenticator handles accounts and session tokens.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Verify(token string) (string, error)
}

// Geocoder resolves free-text location queries.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Place, error)
}

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])

	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: now.Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		oldest := c.lru.Back()
		if oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries
func (c *lruCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*cacheItem[T])
		if now.After(item.expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}

	return len(toRemove)
}

type Server struct {
	http.Server
	templates   *template.Template
	ledger      LedgerService
	budgets     BudgetService
	converter   Converter
	auth        Authenticator
	geocoder    Geocoder
	rateLimiter *rateLimiter

	// Per-owner record cache; mutations invalidate the owner's entry.
	recordsCache *lruCache[[]core.ExpenseRecord]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// startCacheCleanup runs periodic cleanup for the record cache
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.recordsCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger LedgerService, budgets BudgetService, converter Converter, auth Authenticator, geocoder Geocoder) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		budgets:          budgets,
		converter:        converter,
		auth:             auth,
		geocoder:         geocoder,
		rateLimiter:      newRateLimiter(),
		recordsCache:     newLRUCache[[]core.ExpenseRecord](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/", s.withSecurityHeaders(s.requireAuth(s.handleDashboard)))
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.requireAuth(s.handleCreateExpense)))
	mux.HandleFunc("/expenses/update", s.withSecurityHeaders(s.requireAuth(s.handleUpdateExpense)))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.requireAuth(s.handleDeleteExpense)))
	mux.HandleFunc("/budget", s.withSecurityHeaders(s.requireAuth(s.handleSetBudget)))
	// UI partials
	mux.HandleFunc("/ui/summary", s.withSecurityHeaders(s.requireAuth(s.handleSummary)))
	mux.HandleFunc("/ui/convert", s.withSecurityHeaders(s.requireAuth(s.handleConvert)))
	mux.HandleFunc("/locations", s.withSecurityHeaders(s.requireAuth(s.handleLocations)))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		// Generate request ID for tracing
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Apply rate limiting to mutating requests
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	usernameKey  contextKey = "username"
)

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

func (s *Server) invalidateRecords(owner string) {
	s.recordsCache.Delete(owner)
}

// getRecords returns all of the owner's records, cached for a few
// minutes. Trip filtering happens on the cached slice.
func (s *Server) getRecords(ctx context.Context, owner string) ([]core.ExpenseRecord, error) {
	if items, found := s.recordsCache.Get(owner); found {
		slog.DebugContext(ctx, "Records cache hit", "owner", owner, "count", len(items))
		result := make([]core.ExpenseRecord, len(items))
		copy(result, items)
		return result, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	items, err := s.ledger.List(cctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("list expenses (owner=%s): %w", owner, err)
	}

	s.recordsCache.Set(owner, items)
	slog.DebugContext(ctx, "Records cached", "owner", owner, "count", len(items))
	return items, nil
}

func filterByTrip(records []core.ExpenseRecord, trip string) []core.ExpenseRecord {
	if trip == "" {
		return records
	}
	var out []core.ExpenseRecord
	for _, rec := range records {
		if rec.Trip == trip {
			out = append(out, rec)
		}
	}
	return out
}
