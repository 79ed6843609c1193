package handler

import (
	"encoding/json"
	"net/http"
)

// Error represents an error with the intent to be sent in the HTTP
// response to the client. Therefore, it also contains a HTTPResponse,
// next to an error code and error message.
type Error struct {
	ErrorCode    string
	Message      string
	HTTPResponse HTTPResponse
}

func (e Error) Error() string {
	return e.ErrorCode + ": " + e.Message
}

func (e1 Error) Is(target error) bool {
	e2, ok := target.(Error)
	return ok && e1.ErrorCode == e2.ErrorCode
}

// StatusCode returns the HTTP status code used in the response for this error.
func (e Error) StatusCode() int {
	return e.HTTPResponse.StatusCode
}

type errorBody struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError constructs a new Error object with the given error code and message.
// The corresponding HTTP response will have the provided status code
// and a JSON body of the form {"error": {"type": ..., "message": ...}},
// where type is the status text of the status code.
func NewError(errCode string, message string, statusCode int) Error {
	body, _ := json.Marshal(errorBody{
		Error: errorDetails{
			Type:    http.StatusText(statusCode),
			Message: message,
		},
	})

	return Error{
		ErrorCode: errCode,
		Message:   message,
		HTTPResponse: HTTPResponse{
			StatusCode: statusCode,
			Body:       string(body),
			Header: HTTPHeader{
				"Content-Type": "application/json",
			},
		},
	}
}

// withHeader returns a copy of e whose response additionally carries the header.
func (e Error) withHeader(key, value string) Error {
	e.HTTPResponse = e.HTTPResponse.MergeWith(HTTPResponse{
		Header: HTTPHeader{key: value},
	})
	return e
}
