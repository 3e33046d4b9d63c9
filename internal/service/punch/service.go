package punch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/sse"
)

type PunchServiceImpl struct {
	punch.PunchRepository
	events sse.Publisher
}

func NewPunchService(repo punch.PunchRepository, events sse.Publisher) punch.PunchService {
	return &PunchServiceImpl{
		PunchRepository: repo,
		events:          events,
	}
}

// PreviewJornada implements punch.PunchService.
func (s *PunchServiceImpl) PreviewJornada(ctx context.Context, req punch.JornadaRequest) (punch.JornadaPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.JornadaPreviewResponse{}, err
	}

	events, err := BuildEvents(req.Shift())
	if err != nil {
		return punch.JornadaPreviewResponse{}, err
	}

	resp := punch.JornadaPreviewResponse{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Events:     make([]punch.PunchEventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, punch.NewPunchEventResponse(e))
	}
	return resp, nil
}

// SubmitJornada implements punch.PunchService.
func (s *PunchServiceImpl) SubmitJornada(ctx context.Context, req punch.JornadaRequest) (punch.JornadaSubmitResponse, error) {
	if err := req.Validate(); err != nil {
		return punch.JornadaSubmitResponse{}, err
	}

	events, err := BuildEvents(req.Shift())
	if err != nil {
		return punch.JornadaSubmitResponse{}, err
	}

	resp, err := s.submitEvents(ctx, events)
	resp.EmployeeID = req.EmployeeID
	resp.Date = req.Date
	if err != nil {
		return resp, err
	}

	if userID, claimErr := jwt.UserIDFromContext(ctx); claimErr == nil {
		sse.Notify(s.events, userID, sse.EventJornadaSubmitted, resp)
	}
	return resp, nil
}

// submitEvents sends the events one at a time in the given order. The first rejection stops the
// batch; events already accepted stay accepted and are reported alongside the kinds left unsent.
func (s *PunchServiceImpl) submitEvents(ctx context.Context, events []punch.PunchEvent) (punch.JornadaSubmitResponse, error) {
	resp := punch.JornadaSubmitResponse{
		Submitted: make([]punch.PunchAckResponse, 0, len(events)),
	}

	for i, e := range events {
		ack, err := s.PunchRepository.SubmitPunch(ctx, e)
		if err != nil {
			for _, rest := range events[i:] {
				resp.Pending = append(resp.Pending, rest.Kind)
			}
			slog.Error("Punch submission failed",
				"employee_id", e.EmployeeID,
				"kind", e.Kind,
				"local_date_time", e.ISOLocal(),
				"accepted", len(resp.Submitted),
				"error", err,
			)
			return resp, fmt.Errorf("%w: %s at %s: %w", punch.ErrSubmissionFailed, e.Kind, e.ISOLocal(), err)
		}
		resp.Submitted = append(resp.Submitted, punch.NewPunchAckResponse(ack))
	}

	slog.Info("Jornada submitted", "events", len(events))
	return resp, nil
}

// CorrectPunch implements punch.PunchService.
func (s *PunchServiceImpl) CorrectPunch(ctx context.Context, req punch.CorrectPunchRequest) (punch.PunchAckResponse, error) {
	event, err := req.Event()
	if err != nil {
		return punch.PunchAckResponse{}, err
	}

	ack, err := s.PunchRepository.UpdatePunch(ctx, req.PunchID, event)
	if err != nil {
		return punch.PunchAckResponse{}, fmt.Errorf("failed to correct punch %s: %w", req.PunchID, err)
	}
	return punch.NewPunchAckResponse(ack), nil
}
