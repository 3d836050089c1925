package honeypot

import (
	"context"
	"errors"
	"sync"
)

// stubLLM is a scripted LLMClient for tests. respond handles every call;
// requests records them in order.
type stubLLM struct {
	mu       sync.Mutex
	requests []LLMRequest
	respond  func(req LLMRequest) (LLMResponse, error)
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.respond == nil {
		return LLMResponse{}, errors.New("stub: no response configured")
	}
	return s.respond(req)
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubLLM) lastRequest() LLMRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return LLMRequest{}
	}
	return s.requests[len(s.requests)-1]
}

// staticLLM answers every call with the same text.
func staticLLM(text string) *stubLLM {
	return &stubLLM{respond: func(LLMRequest) (LLMResponse, error) {
		return LLMResponse{Text: text}, nil
	}}
}

// failingLLM fails every call.
func failingLLM() *stubLLM {
	return &stubLLM{respond: func(LLMRequest) (LLMResponse, error) {
		return LLMResponse{}, errors.New("stub: backend unavailable")
	}}
}
