// Package line is the LINE Messaging API client used for replies, pushes
// and broadcasts.
package line

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/config"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/format"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

// TokenPath is the channel access token endpoint for client credentials
const TokenPath = "/v2/oauth/accessToken"

// quotaMarker appears in the 429 body once the monthly allowance is used up
const quotaMarker = "monthly limit"

// GroupSummary is the display information of a group chat
type GroupSummary struct {
	GroupID    string `json:"groupId"`
	GroupName  string `json:"groupName"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

// apiCall is one Messaging API request made through the SDK. The response
// is returned even on failure so the status can be classified.
type apiCall func(api *messaging_api.MessagingApiAPI) (*http.Response, error)

// Client sends messages through the Messaging API with retries
type Client struct {
	endpoint      string
	httpClient    *http.Client
	tokens        oauth2.TokenSource
	retryAttempts int
	logger        *logger.Logger

	delay func(attempt int, mode Mode) time.Duration
}

// TokenSource returns a static source for a long-lived channel access
// token, or a client credentials source issuing short-lived tokens when only
// the channel id and secret are configured.
func TokenSource(ctx context.Context, cfg config.LINEConfig) oauth2.TokenSource {
	if cfg.ChannelAccessToken != "" || cfg.ChannelID == "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.ChannelAccessToken,
			TokenType:   "Bearer",
		})
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ChannelID,
		ClientSecret: cfg.ChannelSecret,
		TokenURL:     strings.TrimRight(cfg.APIBaseURL, "/") + TokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cc.TokenSource(ctx)
}

// NewClient creates a Messaging API client authenticated by ts
func NewClient(cfg config.LINEConfig, ts oauth2.TokenSource, log *logger.Logger) *Client {
	return &Client{
		endpoint:      strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		tokens:        ts,
		retryAttempts: cfg.RetryAttempts,
		logger:        log.Named("line"),
		delay:         NextDelay,
	}
}

// Push sends text to a user, group or room id
func (c *Client) Push(ctx context.Context, to, text string, mode Mode) error {
	if to == "" {
		return errors.NewValidationError("Push target is required", nil)
	}
	msg, err := c.message(text)
	if err != nil {
		return err
	}

	// One retry key per logical push lets LINE drop duplicates of a retried send
	retryKey := uuid.NewString()
	req := &messaging_api.PushMessageRequest{
		To:       to,
		Messages: []messaging_api.MessageInterface{msg},
	}
	return c.do(ctx, mode, "push", true, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		res, _, err := api.PushMessageWithHttpInfo(req, retryKey)
		return res, err
	})
}

// Reply answers an inbound event with its reply token
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	if replyToken == "" {
		return errors.NewValidationError("Reply token is required", nil)
	}
	msg, err := c.message(text)
	if err != nil {
		return err
	}

	req := &messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{msg},
	}
	return c.do(ctx, ModeWebhook, "reply", false, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		res, _, err := api.ReplyMessageWithHttpInfo(req)
		return res, err
	})
}

// Broadcast sends text to every user who added the bot
func (c *Client) Broadcast(ctx context.Context, text string, mode Mode) error {
	msg, err := c.message(text)
	if err != nil {
		return err
	}

	retryKey := uuid.NewString()
	req := &messaging_api.BroadcastRequest{
		Messages: []messaging_api.MessageInterface{msg},
	}
	return c.do(ctx, mode, "broadcast", true, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		res, _, err := api.BroadcastWithHttpInfo(req, retryKey)
		return res, err
	})
}

// Respond replies with the token and falls back to pushing to userID when
// the token is missing, expired or already used.
func (c *Client) Respond(ctx context.Context, replyToken, userID, text string) error {
	if replyToken != "" {
		err := c.Reply(ctx, replyToken, text)
		if err == nil {
			return nil
		}
		if userID == "" {
			return err
		}
		c.logger.Warn("Reply failed, falling back to push",
			zap.String("user_id", userID),
			zap.Error(err))
	}
	if userID == "" {
		return errors.NewValidationError("No reply token or user id to respond to", nil)
	}
	return c.Push(ctx, userID, text, ModeWebhook)
}

// GroupSummary fetches the name of a group the bot belongs to
func (c *Client) GroupSummary(ctx context.Context, groupID string) (*GroupSummary, error) {
	if groupID == "" {
		return nil, errors.NewValidationError("Group id is required", nil)
	}

	var resp *messaging_api.GroupSummaryResponse
	err := c.do(ctx, ModeWebhook, "group_summary", false, func(api *messaging_api.MessagingApiAPI) (*http.Response, error) {
		res, summary, err := api.GetGroupSummaryWithHttpInfo(groupID)
		resp = summary
		return res, err
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.NewUpstreamError(errors.ErrorTypeUpstreamServer, "Invalid LINE API response", nil)
	}

	return &GroupSummary{
		GroupID:    resp.GroupId,
		GroupName:  resp.GroupName,
		PictureURL: resp.PictureUrl,
	}, nil
}

func (c *Client) message(text string) (messaging_api.TextMessage, error) {
	if strings.TrimSpace(text) == "" {
		return messaging_api.TextMessage{}, errors.NewValidationError("Message text is required", nil)
	}
	return messaging_api.TextMessage{Text: format.Truncate(text)}, nil
}

// api builds an SDK client bound to ctx with a current access token
func (c *Client) api(ctx context.Context) (*messaging_api.MessagingApiAPI, *errors.AppError) {
	tok, err := c.tokens.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if stderrors.As(err, &retrieveErr) {
			return nil, errors.NewUpstreamError(errors.ErrorTypeUpstreamClient, "LINE rejected the channel credentials", err)
		}
		return nil, classifyTransportError(err)
	}

	api, err := messaging_api.NewMessagingApiAPI(tok.AccessToken,
		messaging_api.WithHTTPClient(c.httpClient),
		messaging_api.WithEndpoint(c.endpoint))
	if err != nil {
		return nil, errors.NewInternalError("Failed to create LINE API client", err)
	}
	return api.WithContext(ctx), nil
}

// do runs one API call under the retry policy of mode. Calls carrying a
// retry key treat a 409 on a later attempt as already delivered.
func (c *Client) do(ctx context.Context, mode Mode, op string, retryKeyed bool, call apiCall) error {
	attempts := maxAttempts(c.retryAttempts, mode)

	var lastErr *errors.AppError
	for attempt := 1; attempt <= attempts; attempt++ {
		retryAfter, err := c.send(ctx, op, call)
		if err == nil {
			return nil
		}
		if retryKeyed && attempt > 1 && statusOf(err) == http.StatusConflict {
			c.logger.Info("LINE already accepted retried request", zap.String("op", op))
			return nil
		}
		lastErr = err

		if attempt == attempts || !retryable(err, attempt, mode) {
			break
		}

		wait := c.delay(attempt, mode)
		if mode == ModeBackground && retryAfter > wait {
			wait = retryAfter
			if wait > backgroundMaxDelay {
				wait = backgroundMaxDelay
			}
		}

		c.logger.Info("Retrying LINE API call",
			zap.String("op", op),
			zap.Stringer("mode", mode),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.String("error_type", string(err.Type)))

		if err := sleep(ctx, wait); err != nil {
			return errors.NewUpstreamError(errors.ErrorTypeUpstreamTimeout, "LINE API call cancelled", err)
		}
	}

	c.logger.Warn("LINE API call failed",
		zap.String("op", op),
		zap.Stringer("mode", mode),
		zap.Error(lastErr))
	return lastErr
}

// retryable decides whether a failed attempt is worth repeating
func retryable(err *errors.AppError, attempt int, mode Mode) bool {
	switch err.Type {
	case errors.ErrorTypeRateLimited:
		return !(mode == ModeWebhook && attempt == 1)
	case errors.ErrorTypeUpstreamServer, errors.ErrorTypeUpstreamTimeout:
		return true
	}
	return false
}

// send performs a single SDK call and classifies the outcome
func (c *Client) send(ctx context.Context, op string, call apiCall) (time.Duration, *errors.AppError) {
	api, appErr := c.api(ctx)
	if appErr != nil {
		return 0, appErr
	}

	res, err := call(api)
	if res == nil {
		if err == nil {
			return 0, nil
		}
		return 0, classifyTransportError(err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return parseRetryAfter(res.Header.Get("Retry-After")), classifyStatus(res.StatusCode, body)
	}

	// A 2xx whose body failed to decode was still accepted
	if err != nil {
		c.logger.Debug("Ignoring unreadable LINE API response", zap.String("op", op), zap.Error(err))
	}

	c.logger.Debug("LINE API request sent",
		zap.String("op", op),
		zap.Int("status", res.StatusCode))
	return 0, nil
}

func classifyStatus(status int, body []byte) *errors.AppError {
	internal := fmt.Errorf("line: HTTP %d: %s", status, strings.TrimSpace(string(body)))

	switch {
	case status == http.StatusTooManyRequests && strings.Contains(strings.ToLower(string(body)), quotaMarker):
		return errors.NewUpstreamError(errors.ErrorTypeQuotaExhausted, "LINE monthly message quota exhausted", internal)
	case status == http.StatusTooManyRequests:
		return errors.NewUpstreamError(errors.ErrorTypeRateLimited, "LINE API rate limit exceeded", internal)
	case status >= 500:
		return errors.NewUpstreamError(errors.ErrorTypeUpstreamServer, "LINE API server error", internal)
	default:
		appErr := errors.NewUpstreamError(errors.ErrorTypeUpstreamClient, "LINE API rejected the request", internal)
		appErr.Details = map[string]interface{}{"status": status}
		return appErr
	}
}

// statusOf returns the HTTP status recorded on a rejected request, or 0
func statusOf(err *errors.AppError) int {
	if status, ok := err.Details["status"].(int); ok {
		return status
	}
	return 0
}

func classifyTransportError(err error) *errors.AppError {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.NewUpstreamError(errors.ErrorTypeUpstreamTimeout, "LINE API request timed out", err)
	}
	return errors.NewUpstreamError(errors.ErrorTypeUpstreamServer, "LINE API request failed", err)
}

// parseRetryAfter reads a delay-seconds Retry-After header
func parseRetryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
