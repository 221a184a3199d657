// Package shared holds request helpers the JSON features have in common.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/enidea/slack-clone/internal/app/system/apperr"
)

// maxBody bounds request bodies; the largest legitimate one is a message.
const maxBody = 64 << 10

// Decode reads the JSON body of r into v. An empty body leaves v as is.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Invalid("body", err.Error())
	}
	return nil
}
