package deliver

// https://developer.mozilla.org/en-US/docs/Web/HTTP/Range_requests
// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Range

import (
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/ustar"
)

const defaultFilename = "data.tar"

// ErrMissingFile is returned when a reference file does not exist in the tar file.
var ErrMissingFile = errors.New("reference file not found")

// TarHandler serves the tar files <name>.tar of IndexDirectory under
// <name>/data.tar. The query parameter lastfile starts the served archive at
// the entry of that path, and trim=1 keeps only the last entry of every path.
// Byte ranges are supported.
type TarHandler struct {
	IndexDirectory string
	PostfixName    string // Name of a file holding <name> appended to every archive. Empty for none.
}

func requestData(requestPath string) (index string) {
	if p := strings.LastIndex(requestPath, defaultFilename); p > 0 {
		requestPath = requestPath[0:p]
	}
	return path.Base(requestPath)
}

func (handler *TarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := handler.Handler(w, r)
	requestsServed.WithValues(strconv.Itoa(status)).Inc()
}

// startAt drops every entry before the one with path name.
func startAt(a *ustar.Archive, name string) error {
	i := a.IndexOf(name)
	if i < 0 {
		i = a.IndexOf(name + "/")
	}
	if i < 0 {
		return errors.Wrapf(ErrMissingFile, "%q", name)
	}
	a.RemoveRange(0, i)
	return nil
}

// Handler serves the request and returns the response status.
func (handler *TarHandler) Handler(w http.ResponseWriter, r *http.Request) int {
	w.Header().Add("Accept-Ranges", "bytes")
	query := r.URL.Query()
	filename := query.Get("lastfile")
	idxName := requestData(r.URL.Path)
	log := logrus.WithField("name", idxName)
	if idxName == "." || idxName == "/" {
		w.WriteHeader(http.StatusNotFound)
		return http.StatusNotFound
	}
	f, err := os.Open(path.Join(handler.IndexDirectory, idxName+".tar"))
	if err != nil {
		log.WithError(err).Error("Open tar file")
		w.WriteHeader(http.StatusNotFound)
		return http.StatusNotFound
	}
	defer func() { _ = f.Close() }()
	src, err := blob.FromOSFile(f)
	if err != nil {
		log.WithError(err).Error("Stat tar file")
		w.WriteHeader(http.StatusNotFound)
		return http.StatusNotFound
	}
	start := time.Now()
	a, err := ustar.ReadArchive(r.Context(), src)
	parseDuration.UpdateSince(start)
	if err != nil {
		log.WithError(err).Error("Parse tar file")
		w.WriteHeader(http.StatusNotFound)
		return http.StatusNotFound
	}
	if filename != "" {
		if err := startAt(a, filename); err != nil {
			log.WithError(err).Error("Seek")
			w.WriteHeader(http.StatusNotFound)
			return http.StatusNotFound
		}
	}
	if trim, _ := strconv.ParseBool(query.Get("trim")); trim {
		a.Trim()
	}
	if handler.PostfixName != "" {
		content := blob.NewFile(blob.Bytes([]byte(idxName)), handler.PostfixName, src.ModTime)
		if err := a.AddFile(handler.PostfixName, content, ustar.OptMode(0o600)); err != nil {
			log.WithError(err).Error("Append postfix file")
		}
	}
	m := a.ToBlob()
	w.Header().Set("Content-Type", m.MediaType())
	w.Header().Set("Content-Disposition", "attachment; filename=\""+defaultFilename+"\"")
	rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	http.ServeContent(rw, r, defaultFilename, src.ModTime, m.NewReader())
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
