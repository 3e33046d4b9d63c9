package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/confirm"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type ConfirmationHandler interface {
	Confirm(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type confirmationHandlerImpl struct {
	confirmations *confirm.Manager
}

func NewConfirmationHandler(confirmations *confirm.Manager) ConfirmationHandler {
	return &confirmationHandlerImpl{confirmations: confirmations}
}

// Confirm handles POST /confirmations/{id}/confirm
func (h *confirmationHandlerImpl) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.confirmations.Confirm(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleErrorWithData(w, err, result)
		return
	}

	response.SuccessWithMessage(w, "Action completed", result)
}

// Cancel handles DELETE /confirmations/{id}
func (h *confirmationHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.confirmations.Cancel(userID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Action cancelled", nil)
}
