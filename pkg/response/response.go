// Package response holds the JSON bodies written by the HTTP handlers.
package response

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every /api and /auth endpoint.
type Response struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ErrorBody is the bare error shape of POST /create-user.
type ErrorBody struct {
	Error string `json:"error"`
}

func Success(statusCode int, data interface{}) Response {
	return Response{Status: StatusSuccess, StatusCode: statusCode, Data: data}
}

func Error(statusCode int, message string) Response {
	return Response{Status: StatusError, StatusCode: statusCode, Error: message}
}

// Bare wraps message without the envelope.
func Bare(message string) ErrorBody {
	return ErrorBody{Error: message}
}
