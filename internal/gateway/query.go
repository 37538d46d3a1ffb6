package gateway

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// queryValues flattens a GET payload into query parameters. Structs and maps
// go through their JSON form: scalars are sent verbatim, nested objects and
// arrays as JSON text, null fields are dropped.
func queryValues(data any) (url.Values, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return v, nil
	case map[string]string:
		q := make(url.Values, len(v))
		for k, s := range v {
			q.Set(k, s)
		}
		return q, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	r := gjson.ParseBytes(raw)
	if r.Type == gjson.Null {
		return nil, nil
	}
	if !r.IsObject() {
		return nil, fmt.Errorf("encode query: payload must be an object, got %s", r.Type)
	}

	q := url.Values{}
	r.ForEach(func(k, v gjson.Result) bool {
		switch v.Type {
		case gjson.Null:
		case gjson.String:
			q.Set(k.String(), v.String())
		default:
			q.Set(k.String(), v.Raw)
		}
		return true
	})
	return q, nil
}

// withQuery appends q to a path that may already carry a query string.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	sep := "?"
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			sep = "&"
			break
		}
	}
	return path + sep + q.Encode()
}
