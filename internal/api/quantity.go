package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// quantity accepts a JSON number or a numeric string. Anything that is not a
// whole number decodes without error but reports 0, so the transfer engine
// rejects it as an invalid quantity rather than the decoder as a bad body.
type quantity int

func (q *quantity) UnmarshalJSON(data []byte) error {
	*q = 0
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	*q = quantity(n)
	return nil
}
