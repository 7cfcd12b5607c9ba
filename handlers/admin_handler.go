package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/Dosada05/draft-league/services"
)

// maxCatalogBytes - предел размера загружаемого каталога.
const maxCatalogBytes = 4 << 20

type AdminHandler struct {
	catalogService services.CatalogService
}

func NewAdminHandler(cs services.CatalogService) *AdminHandler {
	return &AdminHandler{catalogService: cs}
}

// UploadCatalog обрабатывает POST /admin/catalog. Принимает JSON в теле
// запроса или multipart-форму с файлом в поле "catalog".
func (h *AdminHandler) UploadCatalog(w http.ResponseWriter, r *http.Request) {
	raw, err := readCatalogUpload(w, r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	n, err := h.catalogService.Upload(r.Context(), raw)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func readCatalogUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCatalogBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		if len(raw) == 0 {
			return nil, errors.New("catalog body must not be empty")
		}
		return raw, nil
	}

	if err := r.ParseMultipartForm(maxCatalogBytes); err != nil {
		return nil, fmt.Errorf("failed to parse upload: %w", err)
	}
	file, _, err := r.FormFile("catalog")
	if err != nil {
		return nil, errors.New("catalog file is required")
	}
	defer file.Close()
	return io.ReadAll(file)
}
