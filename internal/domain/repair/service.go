package repair

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	ErrNoPlanner        = errors.New("no repair planner configured")
	ErrResponseRejected = errors.New("planner response rejected")
)

// Planner is the external proposal generator. Implementations receive the
// prompts built by BuildPrompt and return the raw model reply.
type Planner interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service drives one repair round: build the prompt, ask the planner, and
// re-validate whatever comes back before anyone may apply it.
type Service struct {
	planner Planner
	logger  zerolog.Logger
}

// NewService creates a repair service. planner may be nil, in which case
// only Validate is usable.
func NewService(planner Planner, logger zerolog.Logger) *Service {
	return &Service{planner: planner, logger: logger}
}

// Validate checks an externally produced response against its request.
func (s *Service) Validate(req *Request, resp *Response) ValidationResult {
	result := ValidateResponse(req, resp)
	if !result.OK {
		s.logger.Warn().
			Str("request_id", req.Meta.RequestID).
			Int("ops", len(resp.Ops)).
			Strs("errors", result.Errors).
			Msg("repair response rejected")
	}
	return result
}

// Propose asks the configured planner for a patch and validates it. A
// rejected patch is returned together with ErrResponseRejected and the full
// error list; it must not be applied.
func (s *Service) Propose(ctx context.Context, req *Request) (*Response, ValidationResult, error) {
	if s.planner == nil {
		return nil, ValidationResult{}, ErrNoPlanner
	}

	system, user, err := BuildPrompt(req)
	if err != nil {
		return nil, ValidationResult{}, err
	}

	raw, err := s.planner.Complete(ctx, system, user)
	if err != nil {
		return nil, ValidationResult{}, fmt.Errorf("planner: %w", err)
	}

	resp, err := ParseResponse(raw)
	if err != nil {
		return nil, ValidationResult{}, err
	}

	result := s.Validate(req, resp)
	if !result.OK {
		return resp, result, ErrResponseRejected
	}

	s.logger.Info().
		Str("request_id", req.Meta.RequestID).
		Int("ops", len(resp.Ops)).
		Msg("repair response accepted")
	return resp, result, nil
}
