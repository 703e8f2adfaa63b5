package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringDecode(t *testing.T) {
	var v struct {
		S FlexString `json:"s"`
		N FlexString `json:"n"`
		B FlexString `json:"b"`
		Z FlexString `json:"z"`
		O FlexString `json:"o"`
		A FlexString `json:"a"`
	}
	body := `{"s":" abc ","n":4584,"b":true,"z":null,"o":{"x":1},"a":[1,2]}`
	require.NoError(t, json.Unmarshal([]byte(body), &v))

	assert.Equal(t, "abc", v.S.String())
	assert.Equal(t, "4584", v.N.String())
	assert.Equal(t, "true", v.B.String())
	assert.Empty(t, v.Z.String())
	assert.Empty(t, v.O.String())
	assert.Empty(t, v.A.String())
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Empty(t, FirstNonEmpty("", " "))
}

func TestReadBodyStripsBOM(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("\ufeff{\"id\":\"1\"}"))}
	body, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(body))
}
