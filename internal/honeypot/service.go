package honeypot

import (
	"context"
	"errors"
	"strings"

	"github.com/decoyline/honeypot-agent/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestMetadata is optional caller-supplied context about the channel.
type RequestMetadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// InboundRequest is the parsed request delivered by the transport layer.
type InboundRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             Message          `json:"message"`
	ConversationHistory []Message        `json:"conversationHistory"`
	Metadata            *RequestMetadata `json:"metadata,omitempty"`
}

// AgentResponse is the synchronous reply to the counterparty.
// ExtractedIntelligence is populated only by the stateless deployment for
// test inspection; production mode omits it.
type AgentResponse struct {
	Status                string              `json:"status"`
	Reply                 string              `json:"reply"`
	ExtractedIntelligence *IntelligenceBundle `json:"extractedIntelligence,omitempty"`
}

// IntelDispatcher hands a finished turn's history to the background
// extraction/reporting pipeline.
type IntelDispatcher interface {
	EnqueueIntel(ctx context.Context, job IntelJob) error
}

// Service sequences the pipeline per inbound message: append, classify while
// clean, reply in persona, and hand confirmed-scam turns to the intelligence
// pipeline. A session moves CLEAN → SCAM_CONFIRMED at most once; from then on
// classification is skipped and every turn is harvested.
type Service struct {
	detector   *Detector
	agent      *PersonaAgent
	extractor  *Extractor
	sessions   SessionStore
	dispatcher IntelDispatcher
	reporter   *Reporter
	logger     *logging.Logger
	convoLog   *logging.Logger
	stateless  bool
	tracer     trace.Tracer
}

// ServiceOption customizes service behavior.
type ServiceOption func(*Service)

// WithConversationLog adds a file-backed audit trail of conversation turns.
func WithConversationLog(l *logging.Logger) ServiceOption {
	return func(s *Service) {
		s.convoLog = l
	}
}

// NewService builds the stateful orchestrator: per-session state lives in the
// session store and intelligence jobs are dispatched asynchronously.
func NewService(detector *Detector, agent *PersonaAgent, sessions SessionStore, dispatcher IntelDispatcher, logger *logging.Logger, opts ...ServiceOption) *Service {
	if detector == nil {
		panic("honeypot: detector cannot be nil")
	}
	if agent == nil {
		panic("honeypot: persona agent cannot be nil")
	}
	if sessions == nil {
		panic("honeypot: session store cannot be nil")
	}
	if dispatcher == nil {
		panic("honeypot: intel dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Service{
		detector:   detector,
		agent:      agent,
		sessions:   sessions,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("honeypot.internal.pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStatelessService builds the store-less variant: every call classifies
// fresh from caller-supplied history, extraction runs synchronously so the
// bundle can be embedded in the response, and reporting is fired per call.
func NewStatelessService(detector *Detector, agent *PersonaAgent, extractor *Extractor, reporter *Reporter, logger *logging.Logger, opts ...ServiceOption) *Service {
	if detector == nil {
		panic("honeypot: detector cannot be nil")
	}
	if agent == nil {
		panic("honeypot: persona agent cannot be nil")
	}
	if extractor == nil {
		panic("honeypot: extractor cannot be nil")
	}
	if reporter == nil {
		panic("honeypot: reporter cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Service{
		detector:  detector,
		agent:     agent,
		extractor: extractor,
		reporter:  reporter,
		logger:    logger,
		stateless: true,
		tracer:    otel.Tracer("honeypot.internal.pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage runs the pipeline for one inbound turn. The returned error is
// limited to malformed input; classifier, persona, and extractor failures are
// absorbed by their fallbacks and never surface here.
func (s *Service) HandleMessage(ctx context.Context, req InboundRequest) (*AgentResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, errors.New("honeypot: sessionId is required")
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.handle_message")
	defer span.End()
	span.SetAttributes(
		attribute.String("honeypot.session_id", req.SessionID),
		attribute.Bool("honeypot.stateless", s.stateless),
	)

	if s.stateless {
		return s.handleStateless(ctx, req)
	}
	return s.handleStateful(ctx, req)
}

func (s *Service) handleStateful(ctx context.Context, req InboundRequest) (*AgentResponse, error) {
	inbound := req.Message

	sess, err := s.sessions.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		// The reply path must survive store outages; detection below still
		// runs fail-closed without the cached flag.
		s.logger.Error("failed to load session", "error", err, "session_id", req.SessionID)
	}
	isScam := sess.ScamDetected

	if err := s.sessions.AppendMessage(ctx, req.SessionID, inbound); err != nil {
		s.logger.Error("failed to append inbound message", "error", err, "session_id", req.SessionID)
	}

	if !isScam {
		isScam = s.detector.Detect(ctx, inbound.Text, req.ConversationHistory)
		if isScam {
			s.logger.Info("scam detected", "session_id", req.SessionID)
			s.logConvo(req.SessionID, "SCAM DETECTED", inbound.Text)
			if err := s.sessions.MarkScamDetected(ctx, req.SessionID); err != nil {
				s.logger.Error("failed to mark scam detected", "error", err, "session_id", req.SessionID)
			}
		}
	}

	s.logConvo(req.SessionID, "SCAMMER", inbound.Text)

	historyForAgent := append(append([]Message{}, req.ConversationHistory...), inbound)
	reply := s.agent.GenerateReply(ctx, historyForAgent, inbound.Text)
	s.logConvo(req.SessionID, "AGENT", reply)

	agentMsg := AgentReply(inbound, reply)
	if err := s.sessions.AppendMessage(ctx, req.SessionID, agentMsg); err != nil {
		s.logger.Error("failed to append agent reply", "error", err, "session_id", req.SessionID)
	}

	if isScam {
		job := IntelJob{
			SessionID:    req.SessionID,
			ScamDetected: true,
			History:      append(historyForAgent, agentMsg),
		}
		if err := s.dispatcher.EnqueueIntel(ctx, job); err != nil {
			s.logger.Error("failed to dispatch intel job", "error", err, "session_id", req.SessionID)
		}
	}

	return &AgentResponse{Status: "success", Reply: reply}, nil
}

func (s *Service) handleStateless(ctx context.Context, req InboundRequest) (*AgentResponse, error) {
	inbound := req.Message

	isScam := s.detector.Detect(ctx, inbound.Text, req.ConversationHistory)
	s.logConvo(req.SessionID, "SCAMMER", inbound.Text)

	historyForAgent := append(append([]Message{}, req.ConversationHistory...), inbound)
	reply := s.agent.GenerateReply(ctx, historyForAgent, inbound.Text)
	s.logConvo(req.SessionID, "AGENT", reply)

	resp := &AgentResponse{Status: "success", Reply: reply}
	if !isScam {
		return resp, nil
	}

	fullHistory := append(historyForAgent, AgentReply(inbound, reply))
	bundle := s.extractor.Extract(ctx, fullHistory)
	resp.ExtractedIntelligence = &bundle

	// Report delivery is causally after the reply; it must not delay it.
	sessionID := req.SessionID
	count := len(fullHistory)
	go s.reporter.SendFinalReport(context.Background(), sessionID, true, count, bundle)

	return resp, nil
}

func (s *Service) logConvo(sessionID, actor, text string) {
	if s.convoLog == nil {
		return
	}
	s.convoLog.Info("conversation turn",
		"session_id", sessionID,
		"actor", actor,
		"text", text,
	)
}
