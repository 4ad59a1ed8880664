package api

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loopy/internal/stereo"
)

func writeBadRequest(c *echo.Context, err error) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), paramOf(err))
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "")
}

func writeError(c *echo.Context, status int, errType, msg, param string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
			Param:   param,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// decodeImageParam decodes one base64 image after checking from its header
// that it fits within maxPixels.
func decodeImageParam(param, encoded string, maxPixels int) (*stereo.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ";base64,"); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, newInvalidRequest(param, "invalid base64: %v", err)
	}
	w, h, err := stereo.DecodeSize(bytes.NewReader(raw))
	if err != nil {
		return nil, newInvalidRequest(param, "%v", err)
	}
	if !fitsPixels(w, h, maxPixels) {
		return nil, newInvalidRequest(param, "%dx%d image exceeds %d pixels", w, h, maxPixels)
	}
	img, err := stereo.DecodeImage(bytes.NewReader(raw))
	if err != nil {
		return nil, newInvalidRequest(param, "%v", err)
	}
	return img, nil
}

// fitsPixels reports whether a w×h image has at most limit pixels, without
// overflowing on large dimensions.
func fitsPixels(w, h, limit int) bool {
	return w > 0 && h > 0 && w <= limit/h
}

func newSolveID() string {
	return "solve_" + uuid.NewString()
}

func labelRows(labels []int, h, w int) [][]int {
	rows := make([][]int, h)
	for y := range rows {
		rows[y] = labels[y*w : (y+1)*w]
	}
	return rows
}
