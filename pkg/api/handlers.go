package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/ssargent/frugy/pkg/document"
	"github.com/ssargent/frugy/pkg/fru"
	"github.com/ssargent/frugy/pkg/registry"
	"github.com/ssargent/frugy/pkg/storage"
)

// Content types
const (
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
)

// maxBodySize bounds request bodies; a FRU area is at most 2 KiB
const maxBodySize = 64 << 10

// Server holds the API server state
type Server struct {
	registry *registry.Registry
	store    IImageStore
	config   ServerConfig
	metrics  *Metrics
	logger   log.Logger
}

// NewServer creates a new API server
func NewServer(reg *registry.Registry, store IImageStore, config ServerConfig, metrics *Metrics, logger log.Logger) *Server {
	return &Server{
		registry: reg,
		store:    store,
		config:   config,
		metrics:  metrics,
		logger:   logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListSchemas godoc
//
//	@Summary		List area types
//	@Description	Get every supported area type with its fields
//	@Tags			schemas
//	@Produce		json
//	@Success		200	{array}		SchemaResponse
//	@Router			/schemas [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	out := make([]SchemaResponse, 0, len(names))
	for _, name := range names {
		resp, err := s.describe(name)
		if err != nil {
			sendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out = append(out, resp)
	}
	sendSuccess(w, out)
}

// handleGetSchema godoc
//
//	@Summary		Describe an area type
//	@Tags			schemas
//	@Produce		json
//	@Param			type	path		string	true	"Area type"
//	@Success		200		{object}	SchemaResponse
//	@Failure		404		{object}	map[string]string
//	@Router			/schemas/{type} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	resp, err := s.describe(chi.URLParam(r, "type"))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, resp)
}

func (s *Server) describe(name string) (SchemaResponse, error) {
	area, err := s.registry.Lookup(name)
	if err != nil {
		return SchemaResponse{}, err
	}
	fields, err := s.registry.Describe(name)
	if err != nil {
		return SchemaResponse{}, err
	}
	return SchemaResponse{Type: name, Doc: area.Doc, Fields: fields}, nil
}

// handleEncode godoc
//
//	@Summary		Encode an area
//	@Description	Build an area from JSON fields and return its binary image
//	@Tags			areas
//	@Accept			json
//	@Produce		octet-stream
//	@Param			type	path		string				true	"Area type"
//	@Param			body	body		map[string]interface{}	false	"Field values"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/areas/{type}/encode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	body, err := readBody(w, r)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	rec, err := s.registry.NewRecord(typ, nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	if len(body) > 0 {
		if err := document.ApplyJSON(rec, body); err != nil {
			s.metrics.RecordCodecOperation("encode", typ, false)
			sendError(w, err.Error(), statusFor(err))
			return
		}
	}

	image, err := rec.Serialize()
	if err != nil {
		s.metrics.RecordCodecOperation("encode", typ, false)
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordCodecOperation("encode", typ, true)
	s.metrics.RecordImageSize(typ, len(image))
	sendBinary(w, image)
}

// handleDecode godoc
//
//	@Summary		Decode an area
//	@Description	Parse a binary area image and return its fields
//	@Tags			areas
//	@Accept			octet-stream
//	@Produce		json
//	@Param			type	path		string	true	"Area type"
//	@Param			body	body		[]byte	true	"Area image"
//	@Success		200		{object}	AreaResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/areas/{type}/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	body, err := readBody(w, r)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	rec, rest, err := s.registry.Decode(typ, body)
	if err != nil {
		if !errors.Is(err, registry.ErrUnknownType) {
			s.metrics.RecordCodecOperation("decode", typ, false)
		}
		sendError(w, err.Error(), statusFor(err))
		return
	}
	s.metrics.RecordCodecOperation("decode", typ, true)
	sendSuccess(w, AreaResponse{Type: typ, Size: len(body) - len(rest), Fields: document.FieldsOf(rec)})
}

// handlePutImage godoc
//
//	@Summary		Store an image
//	@Description	Validate a binary area image and add it to the catalog
//	@Tags			images
//	@Accept			octet-stream
//	@Produce		json
//	@Param			type	path		string	true	"Area type"
//	@Param			body	body		[]byte	true	"Area image"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string
//	@Router			/images/{type} [post]
//	@Security		ApiKeyAuth
func (s *Server) handlePutImage(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	body, err := readBody(w, r)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	id, err := s.store.Put(typ, body)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, map[string]string{"id": id.String()})
}

// handleListImages godoc
//
//	@Summary		List stored images
//	@Tags			images
//	@Produce		json
//	@Success		200	{array}		storage.Entry
//	@Router			/images [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List()
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list images: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	sendSuccess(w, entries)
}

// handleGetImage godoc
//
//	@Summary		Get a stored image
//	@Description	Return the decoded fields of an image, or its bytes with raw=true
//	@Tags			images
//	@Produce		json,octet-stream
//	@Param			id	path		string	true	"Image ID"
//	@Param			raw	query		bool	false	"Return the raw image"
//	@Success		200	{object}	ImageResponse
//	@Failure		404	{object}	map[string]string
//	@Router			/images/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	entry, err := s.store.Get(id)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	if r.URL.Query().Get("raw") == "true" {
		sendBinary(w, entry.Image)
		return
	}

	resp := ImageResponse{Entry: *entry}
	rec, _, err := s.registry.Decode(entry.Type, entry.Image)
	if err != nil {
		level.Warn(s.logger).Log("msg", "stored image no longer decodes", "id", id, "type", entry.Type, "err", err)
	} else {
		resp.Fields = document.FieldsOf(rec)
	}
	sendSuccess(w, resp)
}

// handleDeleteImage godoc
//
//	@Summary		Delete a stored image
//	@Tags			images
//	@Produce		json
//	@Param			id	path		string	true	"Image ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Router			/images/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	if err := s.store.Delete(id); err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, map[string]string{"message": "Image deleted successfully"})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read request body")
	}
	return body, nil
}

// clientErrors are failures caused by the request itself.
var clientErrors = []error{
	document.ErrFormat,
	storage.ErrInvalidImage,
	storage.ErrInvalidID,
	registry.ErrMfgTime,
	fru.ErrValueRange,
	fru.ErrValueShape,
	fru.ErrFieldAlignment,
	fru.ErrUnknownField,
	fru.ErrEncodingLookup,
	fru.ErrTextCodec,
	fru.ErrShortBuffer,
	fru.ErrChecksumOrPadding,
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, registry.ErrUnknownType) || errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
