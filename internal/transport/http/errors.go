package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"trivia-proof-service/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorResponse{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// bindError turns binding failures into validation errors with a readable message.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validation("invalid request body: " + err.Error())
	}

	var missing, invalid []string
	for _, fe := range verrs {
		name := jsonName(fe.Field())
		if fe.Tag() == "required" {
			missing = append(missing, name)
			continue
		}
		msg := name + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		invalid = append(invalid, msg)
	}
	if len(missing) > 0 {
		return domain.Validation("Missing required fields: " + strings.Join(missing, ", "))
	}
	return domain.Validation("Invalid fields: " + strings.Join(invalid, "; "))
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	if field == "SessionID" || field == "QuestionID" {
		return strings.ToLower(field[:1]) + field[1:len(field)-2] + "Id"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// flexInt accepts a JSON number, a numeric string or an empty value. Workflow templates
// substitute numbers as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("expected an integer, got " + raw)
	}
	*f = flexInt(n)
	return nil
}
