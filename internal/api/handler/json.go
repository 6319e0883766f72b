package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// StrictJSONSerializer is echo's default serializer except that request bodies
// with fields unknown to the target struct are rejected.
type StrictJSONSerializer struct {
	echo.DefaultJSONSerializer
}

func (StrictJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(i); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must contain a single JSON value").SetInternal(err)
	}
	return nil
}

func decodeError(err error) error {
	var ute *json.UnmarshalTypeError
	var se *json.SyntaxError
	switch {
	case errors.As(err, &ute):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be of type %s", ute.Field, ute.Type)).SetInternal(err)
	case errors.As(err, &se), errors.Is(err, io.ErrUnexpectedEOF):
		return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body").SetInternal(err)
	case errors.Is(err, io.EOF):
		return echo.NewHTTPError(http.StatusBadRequest, "request body is empty").SetInternal(err)
	}
	if field, ok := unknownField(err); ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown field "+field).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}

// unknownFieldPrefix is the message encoding/json uses for DisallowUnknownFields
// failures; the package exposes no typed error for it.
const unknownFieldPrefix = "json: unknown field "

// unknownField returns the quoted field name from a DisallowUnknownFields error.
func unknownField(err error) (string, bool) {
	msg := err.Error()
	if !strings.HasPrefix(msg, unknownFieldPrefix) {
		return "", false
	}
	return strings.TrimPrefix(msg, unknownFieldPrefix), true
}
