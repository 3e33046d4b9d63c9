package punch

import (
	"context"
	"io"
)

// PunchService defines manual jornada operations
type PunchService interface {
	// PreviewJornada infers day offsets and builds the events without submitting them
	PreviewJornada(ctx context.Context, req JornadaRequest) (JornadaPreviewResponse, error)

	// SubmitJornada builds the events and submits them one by one in kind order
	SubmitJornada(ctx context.Context, req JornadaRequest) (JornadaSubmitResponse, error)

	// CorrectPunch updates a single existing punch
	CorrectPunch(ctx context.Context, req CorrectPunchRequest) (PunchAckResponse, error)

	// ImportJornadas submits every row of an .xls/.xlsx sheet as a manual jornada
	ImportJornadas(ctx context.Context, file io.Reader, filename string) (ImportResponse, error)
}
