package ai

import (
	"fmt"
	"strings"
)

// UpstreamError is a non-200 response from the generation service.
type UpstreamError struct {
	StatusCode int
	Status     string // upstream status name, e.g. PERMISSION_DENIED
	Message    string
	RequestID  string
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	if e.RequestID != "" {
		return fmt.Sprintf("gemini api error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, msg)
	}
	return fmt.Sprintf("gemini api error: status=%d message=%s", e.StatusCode, msg)
}

// EmptyResponseError is a 200 response that carried no answer text.
type EmptyResponseError struct {
	FinishReason string
	BlockReason  string
}

func (e *EmptyResponseError) Error() string {
	var details []string
	if e.FinishReason != "" {
		details = append(details, "finish_reason="+e.FinishReason)
	}
	if e.BlockReason != "" {
		details = append(details, "block_reason="+e.BlockReason)
	}
	if len(details) == 0 {
		return "empty response from model"
	}
	return "empty response from model: " + strings.Join(details, " ")
}

func emptyResponseError(resp *GenerateResponse) *EmptyResponseError {
	e := &EmptyResponseError{}
	if resp == nil {
		return e
	}
	if len(resp.Candidates) > 0 {
		e.FinishReason = resp.Candidates[0].FinishReason
	}
	if resp.PromptFeedback != nil {
		e.BlockReason = resp.PromptFeedback.BlockReason
	}
	return e
}
