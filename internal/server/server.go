package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// ageQuery is the validated form of GET /age.
type ageQuery struct {
	Birth string `validate:"required,datetime=2006-01-02"`
}

// AgeResponse is the JSON body returned by GET /age.
type AgeResponse struct {
	Birth string              `json:"birth"`
	Age   engine.AgeBreakdown `json:"age"`
	Facts engine.FunFacts     `json:"facts"`
}

// CalendarServer serves the milestone calendar and the age endpoint over HTTP.
type CalendarServer struct {
	// cache is swapped on every sync and read on every request, hence lock-free.
	cache atomic.Pointer[cacheItem]

	Port  string
	Clock engine.Clock

	validate *validator.Validate
}

// NewCalendarServer creates a server answering age queries relative to clock.
func NewCalendarServer(port string, clock engine.Clock) *CalendarServer {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &CalendarServer{
		Port:     port,
		Clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the routing table of the server.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteAge, s.handleAgeRequest)
	mux.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// allowRead rejects anything but GET and HEAD.
func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleAgeRequest answers GET /age?birth=YYYY-MM-DD with the age breakdown
// and fun facts as of the server clock.
func (s *CalendarServer) handleAgeRequest(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	log := slog.With(config.LogKeyComponent, config.CompServer)
	q := ageQuery{Birth: r.URL.Query().Get(config.QueryBirth)}

	if err := s.validate.Struct(q); err != nil {
		log.Debug(config.MsgAgeRejected, config.LogKeyValue, q.Birth, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgBadBirth, http.StatusBadRequest)
		return
	}

	now := s.Clock.Now()
	birth, err := engine.ValidateBirthDate(q.Birth, now)
	if err != nil {
		log.Debug(config.MsgAgeRejected, config.LogKeyValue, q.Birth, config.LogKeyError, err)
		msg := config.HTTPMsgBadBirth
		if errors.Is(err, engine.ErrBirthDateFuture) {
			msg = config.HTTPMsgFutureBirth
		}
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	age, err := engine.ComputeAge(birth, now)
	if err != nil {
		http.Error(w, config.HTTPMsgBadBirth, http.StatusBadRequest)
		return
	}

	resp := AgeResponse{
		Birth: birth.String(),
		Age:   age,
		Facts: engine.ComputeFunFacts(age.TotalDays),
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)

	log.Info(config.MsgAgeServed,
		config.LogKeyYears, age.Years,
		config.LogKeyTotalDays, age.TotalDays,
	)

	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error(config.ErrEncodeResp, config.LogKeyError, err)
	}
}
