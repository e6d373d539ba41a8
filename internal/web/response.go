package web

import (
	"errors"
	"net/http"

	"github.com/meoying/shardorm"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type AmountResponse struct {
	SenderID int64 `json:"senderId"`
	Amount   int64 `json:"amount"`
}

func newErrorResponse(status int, err error) ErrorResponse {
	return ErrorResponse{Error: http.StatusText(status), Message: err.Error()}
}

// statusOf 调用方的输入有问题返回 4xx, 其余都是 500
func statusOf(err error) int {
	switch {
	case errors.Is(err, shardorm.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, shardorm.ErrValidation),
		errors.Is(err, shardorm.ErrPrerequisite),
		errors.Is(err, shardorm.ErrMissingShardingKey),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
