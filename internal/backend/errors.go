package backend

import (
	stderrors "errors"
	"fmt"
	"strings"

	"essaylens/internal/errors"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the analysis service
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// newAPIError extracts the human message from a FastAPI style error body.
// detail is either a string or a list of validation entries with a msg field.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP Error: %d", status)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return fallback
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		if msg := strings.TrimSpace(detail.String()); msg != "" {
			return msg
		}
	case detail.IsArray():
		var msgs []string
		for _, m := range detail.Get("#.msg").Array() {
			if s := strings.TrimSpace(m.String()); s != "" {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return fallback
}

// Describe turns a client error into the message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return fmt.Sprintf("분석 서비스가 요청을 거부했습니다 (%d): %s", apiErr.Status, apiErr.Message)
	}

	switch {
	case errors.HasCode(err, errors.ErrCodeCircuitOpen):
		return "분석 서비스 응답이 계속 실패하여 잠시 요청을 중단했습니다. 잠시 후 다시 시도해 주세요."
	case errors.HasCode(err, errors.ErrCodeNetworkTimeout):
		return "분석 서비스 응답 시간이 초과되었습니다. 잠시 후 다시 시도해 주세요."
	case errors.IsType(err, errors.ErrorTypeNetwork):
		return "분석 서비스에 연결할 수 없습니다. 서버 주소와 네트워크 상태를 확인해 주세요."
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// StatusOf returns the HTTP status of an APIError, or 0 when the call never got an answer.
func StatusOf(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
