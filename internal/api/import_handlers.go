package api

import (
	"net/http"
	"path/filepath"
	"strings"
)

// maxImportSize caps uploaded spreadsheets at 10 MB.
const maxImportSize = 10 << 20

// handleImportCases accepts a multipart upload with a "file" field holding
// a CSV or XLSX spreadsheet of cases.
func (s *Server) handleImportCases(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Missing 'file' field")
		return
	}
	defer file.Close()

	var result interface{}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		result, err = s.importer.ImportCSV(file, header.Filename)
	case ".xlsx":
		result, err = s.importer.ImportXLSX(file, header.Filename)
	default:
		RespondWithError(w, http.StatusUnsupportedMediaType, "Only CSV and XLSX files are supported")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{"result": result})
}
