package tarserv

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/ustar"
)

const defaultFilename = "data.tar"

// TarHandler is a http.Handler that serves the sub-directories of SourceDir
// as tar files. Directories are expected not to change while served.
type TarHandler struct {
	SourceDir      string
	AppendFileName string   // Name of a file holding the directory path appended to every archive. Empty for none.
	Excludes       []string // Patterns passed to OptExclude.

	cache *archiveCache
}

// NewTarHandler returns a TarHandler that keeps up to cacheSize built
// archives in memory. A cached archive is rebuilt only when the modification
// time of the requested directory itself changes; changes further down the
// tree are not noticed. Pass a cacheSize of 0 for trees that change in place.
func NewTarHandler(sourceDir, appendFileName string, cacheSize int) *TarHandler {
	return &TarHandler{
		SourceDir:      sourceDir,
		AppendFileName: appendFileName,
		cache:          newArchiveCache(cacheSize),
	}
}

func (handler *TarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := handler.Handler(w, r)
	requestsServed.WithValues(strconv.Itoa(status)).Inc()
}

func (handler *TarHandler) archive(dir string) (*blob.Multi, error) {
	start := time.Now()
	defer buildDuration.UpdateSince(start)
	opts := []Option{
		OptRelative,
		OptNumericIDs,
		OptGID(0),
		OptUID(0),
		OptExclude(handler.Excludes...),
	}
	if handler.AppendFileName != "" {
		opts = append(opts, OptAppendFile(handler.AppendFileName, 0o600, bytes.NewBufferString(dir)))
	}
	a, err := Build(dir, opts...)
	if err != nil {
		return nil, err
	}
	return a.ToBlob(), nil
}

// Handler serves the request and returns the response status.
func (handler *TarHandler) Handler(w http.ResponseWriter, r *http.Request) int {
	if len(r.URL.Path) == 0 {
		w.WriteHeader(http.StatusForbidden)
		return http.StatusForbidden
	}
	dir := path.Join(handler.SourceDir, path.Clean("/"+r.URL.Path))
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return http.StatusNotFound
	}
	log := logrus.WithField("dir", dir)
	m, ok := handler.cache.get(dir, stat.ModTime())
	if ok {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
		if m, err = handler.archive(dir); err != nil {
			log.WithError(err).Error("Error creating tar")
			w.WriteHeader(http.StatusInternalServerError)
			return http.StatusInternalServerError
		}
		handler.cache.add(dir, stat.ModTime(), m)
	}
	log.WithField("size", m.Size()).Debug("Serving tar")
	w.Header().Set("Content-Type", ustar.MediaType)
	w.Header().Set("Content-Disposition", "inline; filename=\""+defaultFilename+"\"")
	rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	http.ServeContent(rw, r, defaultFilename, stat.ModTime(), m.NewReader())
	return rw.status
}

// statusWriter records the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
