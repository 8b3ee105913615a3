package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a note, notebook or tag. The backend assigns ids; some
// deployments send them as JSON numbers, others as strings.
type ID string

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" || id == "0" }

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id %s: %w", data, err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	if i, err := n.Int64(); err == nil {
		if i == 0 {
			*id = ""
			return nil
		}
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}
