package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a row identifier. Tables may key rows by int8 or uuid, so it
// decodes from either a JSON number or a JSON string.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}
