package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/confirm"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

const maxImportSize = 10 << 20

type JornadaHandler interface {
	Preview(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	CorrectPunch(w http.ResponseWriter, r *http.Request)
}

type jornadaHandlerImpl struct {
	punchService  punch.PunchService
	confirmations *confirm.Manager
}

func NewJornadaHandler(punchService punch.PunchService, confirmations *confirm.Manager) JornadaHandler {
	return &jornadaHandlerImpl{
		punchService:  punchService,
		confirmations: confirmations,
	}
}

// Preview handles POST /jornadas/preview
func (h *jornadaHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	var req punch.JornadaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.punchService.PreviewJornada(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Submit handles POST /jornadas. Nothing is sent to the HR API until the returned
// pending action is confirmed.
func (h *jornadaHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req punch.JornadaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	preview, err := h.punchService.PreviewJornada(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	description := fmt.Sprintf("Submit %d punches for %s on %s", len(preview.Events), preview.EmployeeID, preview.Date)
	pending, err := h.confirmations.Request(userID, description, preview, func(ctx context.Context) (interface{}, error) {
		return h.punchService.SubmitJornada(ctx, req)
	})
	if err != nil {
		slog.Error("Failed to register pending jornada", "error", err)
		response.InternalServerError(w, "Failed to register pending action")
		return
	}

	response.Accepted(w, "Confirm to submit the jornada", pending)
}

// Import handles POST /jornadas/import (multipart, field "file")
func (h *jornadaHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Spreadsheet file is required", nil)
			return
		}
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.punchService.ImportJornadas(r.Context(), file, fileHeader.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("%d rows imported, %d failed", result.Succeeded, result.Failed), result)
}

// CorrectPunch handles PUT /punches/{id}
func (h *jornadaHandlerImpl) CorrectPunch(w http.ResponseWriter, r *http.Request) {
	var req punch.CorrectPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PunchID = chi.URLParam(r, "id")

	result, err := h.punchService.CorrectPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch corrected", result)
}
