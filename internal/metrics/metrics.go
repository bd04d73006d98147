package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JustRK-07/Sip-advanced/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Session metrics
	SessionsStartedTotal   int64
	SessionsCompletedTotal int64
	SessionsFailedTotal    int64
	HangupsTotal           int64
	TransfersTotal         int64
	CallbacksTotal         int64
	VoicemailsTotal        int64
	activeSessions         int64

	// Conversation metrics
	UtterancesTotal      int64
	IdleNudgesTotal      int64
	classificationsTotal map[types.InterestStatus]int64

	// Reporter metrics
	ReportsSentTotal   int64
	ReportsFailedTotal int64

	// Monitor feed metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	activeConnections            int64

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			classificationsTotal: make(map[types.InterestStatus]int64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordSessionStarted increments the started-sessions counter
func (m *Metrics) RecordSessionStarted() {
	m.mu.Lock()
	m.SessionsStartedTotal++
	m.activeSessions++
	m.mu.Unlock()
}

// RecordSessionEnded decrements active sessions and records the outcome class
func (m *Metrics) RecordSessionEnded(status types.CallStatus) {
	m.mu.Lock()
	m.activeSessions--
	switch status {
	case types.CallStatusFailed:
		m.SessionsFailedTotal++
	case types.CallStatusHungUp:
		m.HangupsTotal++
	default:
		m.SessionsCompletedTotal++
	}
	m.mu.Unlock()
}

// RecordUtterance increments the utterance counter
func (m *Metrics) RecordUtterance() {
	m.mu.Lock()
	m.UtterancesTotal++
	m.mu.Unlock()
}

// RecordClassification counts a classifier verdict
func (m *Metrics) RecordClassification(verdict types.InterestStatus) {
	m.mu.Lock()
	m.classificationsTotal[verdict]++
	m.mu.Unlock()
}

// RecordIdleNudge increments the idle-nudge counter
func (m *Metrics) RecordIdleNudge() {
	m.mu.Lock()
	m.IdleNudgesTotal++
	m.mu.Unlock()
}

// RecordTransfer increments the transfer counter
func (m *Metrics) RecordTransfer() {
	m.mu.Lock()
	m.TransfersTotal++
	m.mu.Unlock()
}

// RecordCallback increments the scheduled-callback counter
func (m *Metrics) RecordCallback() {
	m.mu.Lock()
	m.CallbacksTotal++
	m.mu.Unlock()
}

// RecordVoicemail increments the voicemail counter
func (m *Metrics) RecordVoicemail() {
	m.mu.Lock()
	m.VoicemailsTotal++
	m.mu.Unlock()
}

// RecordReportSent increments the delivered-notifications counter
func (m *Metrics) RecordReportSent() {
	m.mu.Lock()
	m.ReportsSentTotal++
	m.mu.Unlock()
}

// RecordReportFailed increments the failed-notifications counter
func (m *Metrics) RecordReportFailed() {
	m.mu.Lock()
	m.ReportsFailedTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// GetActiveSessions returns the number of in-flight call sessions
func (m *Metrics) GetActiveSessions() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeSessions
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("agent_uptime_seconds", time.Since(m.startTime).Seconds())

		// Session metrics
		write("agent_sessions_started_total", m.SessionsStartedTotal)
		write("agent_sessions_completed_total", m.SessionsCompletedTotal)
		write("agent_sessions_failed_total", m.SessionsFailedTotal)
		write("agent_sessions_active", m.activeSessions)
		write("agent_hangups_total", m.HangupsTotal)
		write("agent_transfers_total", m.TransfersTotal)
		write("agent_callbacks_total", m.CallbacksTotal)
		write("agent_voicemails_total", m.VoicemailsTotal)

		// Conversation metrics
		write("agent_utterances_total", m.UtterancesTotal)
		write("agent_idle_nudges_total", m.IdleNudgesTotal)
		for verdict, count := range m.classificationsTotal {
			write("agent_classifications_total", count, "verdict", string(verdict))
		}

		// Reporter metrics
		write("agent_reports_sent_total", m.ReportsSentTotal)
		write("agent_reports_failed_total", m.ReportsFailedTotal)

		// Monitor feed metrics
		write("agent_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("agent_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("agent_websocket_active_connections", m.activeConnections)
	}
}
