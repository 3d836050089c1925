package honeypot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/decoyline/honeypot-agent/pkg/logging"
)

// FinalReport is the externally transmitted intelligence artifact.
type FinalReport struct {
	SessionID              string             `json:"sessionId"`
	ScamDetected           bool               `json:"scamDetected"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	ExtractedIntelligence  IntelligenceBundle `json:"extractedIntelligence"`
	AgentNotes             string             `json:"agentNotes"`
}

// Reporter delivers finalized intelligence bundles to the external
// evaluation endpoint, off the synchronous request path.
type Reporter struct {
	client   *http.Client
	url      string
	logger   *logging.Logger
	intelLog *logging.Logger
}

// NewReporter builds a reporter posting to url with the given timeout.
// intelLog receives the intelligence audit trail and may be nil.
func NewReporter(url string, timeout time.Duration, logger, intelLog *logging.Logger) *Reporter {
	if strings.TrimSpace(url) == "" {
		panic("honeypot: report url cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Reporter{
		client:   &http.Client{Timeout: timeout},
		url:      url,
		logger:   logger,
		intelLog: intelLog,
	}
}

// SendFinalReport serializes and POSTs the final report. By the time this
// runs the conversational response has already been returned, so every
// failure (timeout, non-2xx, network error) is logged and swallowed; there
// is no retry.
func (r *Reporter) SendFinalReport(ctx context.Context, sessionID string, scamDetected bool, messageCount int, intel IntelligenceBundle) bool {
	report := FinalReport{
		SessionID:              sessionID,
		ScamDetected:           scamDetected,
		TotalMessagesExchanged: messageCount,
		ExtractedIntelligence:  intel,
		AgentNotes:             intel.AgentNotes,
	}

	if r.intelLog != nil {
		r.intelLog.Info("intelligence extracted",
			"session_id", sessionID,
			"scam_detected", scamDetected,
			"message_count", messageCount,
			"bank_accounts", intel.BankAccounts,
			"upi_ids", intel.UPIIDs,
			"phishing_links", intel.PhishingLinks,
			"phone_numbers", intel.PhoneNumbers,
			"keywords", intel.SuspiciousKeywords,
			"notes", intel.AgentNotes,
		)
	}

	body, err := json.Marshal(report)
	if err != nil {
		r.logger.Error("failed to encode final report", "error", err, "session_id", sessionID)
		reportTotal.WithLabelValues("failure").Inc()
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.logger.Error("failed to build report request", "error", err, "session_id", sessionID)
		reportTotal.WithLabelValues("failure").Inc()
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("failed to send final report", "error", err, "session_id", sessionID)
		reportTotal.WithLabelValues("failure").Inc()
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Error("report endpoint rejected final report",
			"status", resp.StatusCode,
			"session_id", sessionID,
		)
		reportTotal.WithLabelValues("failure").Inc()
		return false
	}

	r.logger.Info("final report delivered", "session_id", sessionID, "status", resp.StatusCode)
	reportTotal.WithLabelValues("success").Inc()
	return true
}
