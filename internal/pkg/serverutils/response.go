package serverutils

import (
	"turingtest-be/internal/dto"
)

func ErrorResponse(status int, message string) dto.ErrorResponse {
	return dto.ErrorResponse{
		Status:  status,
		Message: message,
	}
}
