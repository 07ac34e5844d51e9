package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/petos-app/petos/internal/caption"
	"github.com/petos-app/petos/internal/config"
	"github.com/petos-app/petos/internal/identity"
	"github.com/petos-app/petos/internal/models"
	"github.com/petos-app/petos/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	maxUploadBytes   = 10 << 20
	downloadFilename = "petos_polaroid.jpg"
)

// Meter derives the remaining free uses for an identity.
type Meter interface {
	Remaining(ctx context.Context, identity string) int
}

// AccessRedeemer validates and records an access code redemption.
type AccessRedeemer interface {
	Redeem(ctx context.Context, identity, code string) error
}

// PolaroidGenerator runs the caption-and-composite pipeline.
type PolaroidGenerator interface {
	Generate(ctx context.Context, identity string, lang models.Language, photo image.Image, photoBytes []byte, mimeType string) (*service.GenerationResult, error)
}

type Server struct {
	addr      string
	log       *slog.Logger
	sessions  *identity.Store
	meter     Meter
	access    AccessRedeemer
	generator PolaroidGenerator

	paymentLink string
	templates   *template.Template
	router      *chi.Mux
}

func NewServer(cfg config.Config, log *slog.Logger, sessions *identity.Store, meter Meter, access AccessRedeemer, generator PolaroidGenerator) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:        cfg.ListenAddr,
		log:         log,
		sessions:    sessions,
		meter:       meter,
		access:      access,
		generator:   generator,
		paymentLink: cfg.PaymentLinkURL,
		templates:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
		router:      r,
	}

	r.Get("/", s.handleIndex)
	r.Post("/generate", s.handleGenerate)
	r.Get("/healthz", s.handleHealth)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("web server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

type pageData struct {
	Remaining    int
	Premium      bool
	Notice       string
	PaymentLink  string
	Caption      string
	ImageDataURI template.URL
	Filename     string
	Title        string
	Message      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Begin(r)
	remaining := s.meter.Remaining(r.Context(), sess.Identity)

	if err := s.sessions.Commit(w, r, sess); err != nil {
		s.log.Error("session commit failed", "err", err)
	}

	s.render(w, http.StatusOK, "index.html", pageData{
		Remaining: displayRemaining(remaining),
		Premium:   sess.Premium,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	sess := s.sessions.Begin(r)
	lang := models.ParseLanguage(r.FormValue("language"))

	notice := ""
	if code := r.FormValue("access_code"); code != "" {
		switch err := s.access.Redeem(r.Context(), sess.Identity, code); {
		case err == nil:
			sess.Premium = true
		case errors.Is(err, service.ErrCodeInvalid):
			notice = "That access code is not valid."
		case errors.Is(err, service.ErrCodeExhausted):
			notice = "That access code has been used up."
		default:
			s.log.Error("access code redemption failed", "err", err)
			notice = "Could not verify the access code right now."
		}
	}

	remaining := s.meter.Remaining(r.Context(), sess.Identity)

	// The cookie carrying a freshly minted identity or premium flag must go
	// out with this response, whatever we render below.
	if err := s.sessions.Commit(w, r, sess); err != nil {
		s.log.Error("session commit failed", "err", err)
	}

	// Hard stop: the gate runs in-process before the pipeline, so hiding
	// the form client-side is never the only enforcement.
	if !service.MayGenerate(sess.Premium, remaining) {
		s.render(w, http.StatusForbidden, "upgrade.html", pageData{
			PaymentLink: s.paymentLink,
			Notice:      notice,
		})
		return
	}

	photo, photoBytes, mimeType, err := readPhoto(r)
	if err != nil {
		s.render(w, http.StatusBadRequest, "error.html", pageData{
			Title:   "That didn't look like a photo",
			Message: "Please upload a JPEG or PNG image of your pet.",
		})
		return
	}

	result, err := s.generator.Generate(r.Context(), sess.Identity, lang, photo, photoBytes, mimeType)
	if err != nil {
		if errors.Is(err, caption.ErrAllModelsExhausted) {
			s.log.Error("caption generation exhausted", "identity", sess.Identity, "err", err)
			s.render(w, http.StatusServiceUnavailable, "error.html", pageData{
				Title:   "The pet psychics are busy",
				Message: "Our caption service is overloaded right now. Please try again in a moment.",
			})
			return
		}
		s.log.Error("generation failed", "identity", sess.Identity, "err", err)
		s.render(w, http.StatusInternalServerError, "error.html", pageData{
			Title:   "Something went wrong",
			Message: "We could not generate your polaroid. Please try again.",
		})
		return
	}

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(result.JPEG)
	s.render(w, http.StatusOK, "result.html", pageData{
		Caption:      result.Caption,
		ImageDataURI: template.URL(dataURI),
		Filename:     downloadFilename,
		Remaining:    displayRemaining(remaining - 1),
		Premium:      sess.Premium,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render template failed", "template", name, "err", err)
	}
}

func readPhoto(r *http.Request) (image.Image, []byte, string, error) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		return nil, nil, "", fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read upload body: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, "", fmt.Errorf("decode upload %q: %w", header.Filename, err)
	}

	mimeType := "image/" + format
	return img, raw, mimeType, nil
}

func displayRemaining(remaining int) int {
	if remaining < 0 {
		return 0
	}
	return remaining
}
