package gateway

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"bookkeeping/internal/core"
)

// ErrNotEnvelope is returned for a reply body that is not a JSON object.
var ErrNotEnvelope = errors.New("response is not a JSON object")

// DecodeEnvelope reads a reply leniently: code may be a number or a
// numeric string, a missing msg is empty and data is kept raw for the caller.
func DecodeEnvelope(body []byte) (core.Envelope, error) {
	if !gjson.ValidBytes(body) {
		return core.Envelope{}, ErrNotEnvelope
	}
	r := gjson.ParseBytes(body)
	if !r.IsObject() {
		return core.Envelope{}, ErrNotEnvelope
	}

	env := core.Envelope{
		Code:    int(r.Get("code").Int()),
		Success: r.Get("success").Bool(),
		Msg:     r.Get("msg").String(),
	}
	if d := r.Get("data"); d.Exists() {
		env.Data = json.RawMessage(d.Raw)
	}
	return env, nil
}
