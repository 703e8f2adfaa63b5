package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// FlexString decodes a JSON string, number or boolean into its text form.
// null, objects and arrays decode to "" so a surprising shape never fails the
// whole response.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case '{', '[':
		*f = ""
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ReadBody reads a response body up to a fixed limit. The BOM some gateways
// prepend is stripped.
func ReadBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(body, []byte("\ufeff")), nil
}
