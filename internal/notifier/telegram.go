package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pgauin01/hustlebot/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

const telegramAPIBaseURL = "https://api.telegram.org"

// TelegramNotifier sends job alerts to a Telegram chat via the Bot API.
type TelegramNotifier struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramNotifier returns a notifier that posts each job as an HTML
// message to the configured chat.
func NewTelegramNotifier(botToken, chatID string, httpClient *http.Client, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL:    telegramAPIBaseURL,
		botToken:   botToken,
		chatID:     chatID,
		httpClient: httpClient,
		logger:     logger,
	}
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends each job as a separate Telegram message.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (n *TelegramNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	failures := 0
	for i, j := range jobs {
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}

		if err := n.sendMessage(buildAlert(j)); err != nil {
			n.logger.Error("telegram notification failed", "source", j.Source, "title", j.Title, "error", err)
			failures++
		}
	}

	sent := len(jobs) - failures
	if failures == len(jobs) {
		return fmt.Errorf("all %d telegram notifications failed", failures)
	}
	n.logger.Info("telegram notifications complete", "sent", sent, "failed", failures)
	return nil
}

func (n *TelegramNotifier) sendMessage(text string) error {
	msg := telegramMessage{
		ChatID:                n.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := n.baseURL + "/bot" + n.botToken + "/sendMessage"
	resp, err := n.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		n.logger.Warn("telegram rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := n.httpClient.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to telegram (retry): %w", err)
		}
		defer resp2.Body.Close()
		return checkTelegramResponse(resp2)
	}

	return checkTelegramResponse(resp)
}

func checkTelegramResponse(resp *http.Response) error {
	var tr telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("telegram returned HTTP %d", resp.StatusCode)
	}
	if !tr.OK {
		return fmt.Errorf("telegram error: %s (HTTP %d)", tr.Description, resp.StatusCode)
	}
	return nil
}

// buildAlert formats a job as a Telegram HTML message. Hot matches (90+)
// get a fire emoji, everything else a sparkle.
func buildAlert(j model.Job) string {
	emoji := "✨"
	if j.RelevanceScore >= 90 {
		emoji = "🔥"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b>\n", emoji, html.EscapeString(j.Title))
	if j.Company != "" {
		fmt.Fprintf(&b, "🏢 %s\n", html.EscapeString(j.Company))
	}
	fmt.Fprintf(&b, "📊 Score: %d/100\n", j.RelevanceScore)
	if j.BudgetMax > 0 {
		currency := j.Currency
		if currency == "" {
			currency = "USD"
		}
		fmt.Fprintf(&b, "💰 %.0f-%.0f %s\n", j.BudgetMin, j.BudgetMax, currency)
	}
	if j.Reasoning != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(j.Reasoning))
	}
	if j.URL != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">View job</a>", html.EscapeString(j.URL))
	}
	return b.String()
}

// SendTestMessage sends a dummy job notification to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	testJob := model.Job{
		ID:             "test-001",
		Source:         "test",
		Title:          "Test Notification — Integration Verified",
		Company:        "HustleBot Test",
		URL:            "https://remoteok.com",
		PostedAt:       &now,
		RelevanceScore: 100,
		Reasoning:      "If you can read this, alerts are wired up.",
	}
	return n.Notify([]model.Job{testJob})
}
