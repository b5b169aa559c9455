package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/command"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/middleware"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/errors"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

func commandRequest(body string, admin bool) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/commands", strings.NewReader(body))
	if admin {
		ctx := context.WithValue(req.Context(), middleware.AdminContextKey, &domain.AdminClaims{Subject: "Uadmin"})
		req = req.WithContext(ctx)
	}
	return req
}

func TestCommandHandler_Execute(t *testing.T) {
	t.Run("anonymous view", func(t *testing.T) {
		commands := new(MockCommandService)
		commands.On("Parse", "查看活動", false).Return(command.ViewAll{})
		commands.On("Execute", mock.Anything, command.ViewAll{}).Return("📅 所有活動", nil)
		h := NewCommandHandler(commands, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Execute(rec, commandRequest(`{"text":"查看活動"}`, false))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp CommandResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
		assert.Equal(t, "📅 所有活動", resp.Reply)
		commands.AssertExpectations(t)
	})

	t.Run("admin mutation", func(t *testing.T) {
		cmd := command.Delete{ID: 3}
		commands := new(MockCommandService)
		commands.On("Parse", "刪除活動 3", true).Return(cmd)
		commands.On("Execute", mock.Anything, cmd).Return("✅ 活動已刪除", nil)
		h := NewCommandHandler(commands, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Execute(rec, commandRequest(`{"text":"刪除活動 3"}`, true))

		assert.Equal(t, http.StatusOK, rec.Code)
		commands.AssertExpectations(t)
	})

	t.Run("forbidden mutation", func(t *testing.T) {
		cmd := command.Forbidden{Action: command.ActionDelete}
		commands := new(MockCommandService)
		commands.On("Parse", "刪除活動 3", false).Return(cmd)
		commands.On("Execute", mock.Anything, cmd).Return("", errors.NewAuthorizationError("您沒有刪除活動的權限。"))
		h := NewCommandHandler(commands, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Execute(rec, commandRequest(`{"text":"刪除活動 3"}`, false))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
	})

	t.Run("unknown text", func(t *testing.T) {
		commands := new(MockCommandService)
		commands.On("Parse", "hello", false).Return(command.Unknown{Text: "hello"})
		h := NewCommandHandler(commands, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Execute(rec, commandRequest(`{"text":"hello"}`, false))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "UNKNOWN_COMMAND", decodeError(t, rec).Code)
		commands.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("malformed arguments", func(t *testing.T) {
		cmd := command.Malformed{Action: command.ActionCreate, Hint: "格式錯誤"}
		commands := new(MockCommandService)
		commands.On("Parse", "新增活動", true).Return(cmd)
		commands.On("Execute", mock.Anything, cmd).Return("", errors.NewValidationError("格式錯誤", nil))
		h := NewCommandHandler(commands, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Execute(rec, commandRequest(`{"text":"新增活動"}`, true))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "格式錯誤", decodeError(t, rec).Message)
	})

	t.Run("empty text", func(t *testing.T) {
		commands := new(MockCommandService)
		h := NewCommandHandler(commands, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Execute(rec, commandRequest(`{"text":"   "}`, false))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		commands.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	})
}

func TestReplyForErrorMatchesHTTPMessage(t *testing.T) {
	err := errors.NewNotFoundError("找不到 ID 為 9 的活動。")
	assert.Equal(t, err.Message, service.ReplyForError(err))
}
