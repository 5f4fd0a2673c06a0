package server

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/larsks/datamodule/internal/document"
)

func isDocument(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".html" || ext == ".htm"
}

// documentHandler serves HTML documents after activating them and every
// other file unchanged.
func (s *Server) documentHandler(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	f, err := s.documents.Open(name)
	if err != nil {
		s.sendOpenError(w, err)
		return
	}

	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck
		http.Error(w, "failed to stat file", http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		f.Close() //nolint:errcheck
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		name = path.Join(name, s.config.Index)
		f, err = s.documents.Open(name)
		if err != nil {
			s.sendOpenError(w, err)
			return
		}
	}
	defer f.Close() //nolint:errcheck

	if !isDocument(name) {
		http.ServeContent(w, r, name, info.ModTime(), f)
		return
	}

	doc, err := document.Parse(f)
	if err != nil {
		log.Printf("failed to parse %s: %v", name, err)
		http.Error(w, "failed to parse document", http.StatusInternalServerError)
		return
	}

	s.activate(r.Context(), name, doc)

	if s.reloadScript != "" {
		s.injectLiveReload(doc)
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		log.Printf("failed to render %s: %v", name, err)
		http.Error(w, "failed to render document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(buf.Bytes()) //nolint:errcheck
	}
}

// activate runs the activation sweep for doc. Failed pairs are logged; the
// document is served with whatever the successful pairs produced.
func (s *Server) activate(ctx context.Context, name string, doc *document.Document) {
	if s.config.ActivationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ActivationTimeout)
		defer cancel()
	}

	sweep := s.activator.Activate(ctx, doc)
	if err := sweep.WaitContext(ctx); err != nil {
		log.Printf("activating %s: %v", name, err)
	}
}

func (s *Server) injectLiveReload(doc *document.Document) {
	body := doc.Body()
	if body == nil {
		return
	}
	err := doc.Update(func() error {
		return body.AppendRaw(s.reloadScript)
	})
	if err != nil {
		log.Printf("failed to inject live reload script: %v", err)
	}
}

func (s *Server) sendOpenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "failed to open file", http.StatusInternalServerError)
	}
}
