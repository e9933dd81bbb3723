package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Upload size limits.
const (
	MaxDocumentBytes  = 50 << 20
	MaxQuestionsBytes = 5 << 20

	// multipartMemory is the in-memory threshold for parsing uploads;
	// larger parts spill to temporary files.
	multipartMemory = 10 << 20
)

// answerPayload is one question's entry in the response object.
type answerPayload struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
}

// handleAnswer answers a batch of questions against one uploaded document.
//
// Validation runs cheapest-first: extensions and sizes, then the questions
// file shape and limit, and only then is the document saved and parsed. A
// request rejected for too many questions never touches the document.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with document_file and questions_file")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	docFile, docHeader, err := r.FormFile("document_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing document_file part")
		return
	}
	defer docFile.Close()

	ext := strings.ToLower(filepath.Ext(docHeader.Filename))
	if ext != ".pdf" && ext != ".json" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported document format %q: only .pdf and .json are accepted", ext))
		return
	}
	if docHeader.Size > MaxDocumentBytes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("document file too large: limit is %d MB", MaxDocumentBytes>>20))
		return
	}

	qFile, qHeader, err := r.FormFile("questions_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing questions_file part")
		return
	}
	defer qFile.Close()

	if strings.ToLower(filepath.Ext(qHeader.Filename)) != ".json" {
		writeError(w, http.StatusBadRequest, "questions file must be a .json file")
		return
	}
	if qHeader.Size > MaxQuestionsBytes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("questions file too large: limit is %d MB", MaxQuestionsBytes>>20))
		return
	}

	questions, err := s.readQuestions(qFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docPath, cleanup, err := saveUpload(docFile, ext)
	if err != nil {
		logger.Error("save upload: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save uploaded document")
		return
	}
	defer cleanup()

	upload := driving.DocumentUpload{
		Path:         docPath,
		Ext:          ext,
		OriginalName: docHeader.Filename,
	}

	results, err := s.svc.AnswerBatch(r.Context(), upload, questions)
	if err != nil {
		writeAnswerError(w, err)
		return
	}

	response := make(map[string]answerPayload, len(results))
	for question, record := range results {
		response[question] = answerPayload{
			Answer:    record.Answer,
			Citations: record.Citations,
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// readQuestions parses, shape-checks and normalizes the questions file.
func (s *Server) readQuestions(file multipart.File) ([]string, error) {
	data, err := io.ReadAll(io.LimitReader(file, MaxQuestionsBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	raw, err := ParseQuestions(data)
	if err != nil {
		return nil, err
	}
	return domain.NormalizeQuestions(raw)
}

// saveUpload writes the document to a request-scoped temp directory. The
// returned cleanup removes the whole directory and is safe on all exit
// paths.
func saveUpload(file multipart.File, ext string) (string, func(), error) {
	dir := filepath.Join(os.TempDir(), "docqa-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", nil, fmt.Errorf("create upload dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("remove upload dir %s: %v", dir, err)
		}
	}

	path := filepath.Join(dir, "document"+ext)
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write upload: %w", err)
	}
	return path, cleanup, nil
}

// writeAnswerError maps whole-request pipeline failures to status codes.
// Client-caused failures (bad format, unreadable content) are 400; upstream
// and unexpected failures are 500.
func writeAnswerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat), errors.Is(err, domain.ErrCorruptInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("answer batch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to process request")
	}
}
