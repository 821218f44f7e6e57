package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var EmptyRequestBodyResponse = Response{
	StatusCode: http.StatusBadRequest,
	Error:      "Empty Request Body",
	Message:    "Request body is empty. Please provide necessary data.",
}

var InvalidRequestBodyResponse = Response{
	StatusCode: http.StatusBadRequest,
	Error:      "Invalid Request Body",
	Message:    "Request body is not valid JSON.",
}

var RequestTooLargeResponse = Response{
	StatusCode: http.StatusRequestEntityTooLarge,
	Error:      "Request Too Large",
	Message:    "Request body is too large.",
}

var URLNotFoundResponse = Response{
	StatusCode: http.StatusNotFound,
	Error:      "URL Not Found",
	Message:    "Short URL not found.",
}

var UnauthorizedResponse = Response{
	StatusCode: http.StatusUnauthorized,
	Error:      "Unauthorized",
	Message:    "Valid admin key is required.",
}

var TooManyRequestsResponse = Response{
	StatusCode: http.StatusTooManyRequests,
	Error:      "Too Many Requests",
	Message:    "Too many requests from this client. Please try again later.",
}

var ServerErrorResponse = Response{
	StatusCode: http.StatusInternalServerError,
	Error:      "Server Error",
	Message:    "An internal server error occurred. Please try again later.",
}

type Response struct {
	Success    bool              `json:"success"`
	StatusCode int               `json:"-"`
	Error      string            `json:"error,omitempty"`
	Message    string            `json:"message,omitempty"`
	Details    []ValidationError `json:"details,omitempty"`
	Data       any               `json:"data,omitempty"`
}

// Render writes resp as JSON with its status code.
func Render(w http.ResponseWriter, r *http.Request, resp Response) {
	statusCode := resp.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	render.Status(r, statusCode)
	render.JSON(w, r, resp)
}

func SuccessResponse(statusCode int, msg string, data ...any) Response {
	resp := Response{
		Success:    true,
		StatusCode: statusCode,
		Message:    msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

func BadRequestResponse(msg string) Response {
	return Response{
		StatusCode: http.StatusBadRequest,
		Error:      "Bad Request",
		Message:    msg,
	}
}

func ValidationErrorResponse(err error) Response {
	return Response{
		StatusCode: http.StatusBadRequest,
		Error:      "Validation Error",
		Message:    "Request contains invalid values.",
		Details:    getValidationErrors(err),
	}
}

type ValidationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func issueForTag(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "url", "http_url", "public_url":
		return "Invalid url."
	case "max":
		return "Value is too long."
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []ValidationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	errs := make([]ValidationError, 0, len(validationErrs))
	for _, e := range validationErrs {
		errs = append(errs, ValidationError{
			Field: e.Field(),
			Value: e.Value(),
			Issue: issueForTag(e.Tag()),
		})
	}

	return errs
}
