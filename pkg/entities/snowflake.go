package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake decodes a channel, role or user reference written either as a JSON string or as a
// JSON number. Older documents write numbers and use 0 for unset, which decodes to "".
type Snowflake string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Snowflake(v)
		return nil
	}

	// Parsed as an integer so large ids keep every digit.
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snowflake %s: %w", data, err)
	}
	if n == 0 {
		*s = ""
		return nil
	}
	*s = Snowflake(strconv.FormatUint(n, 10))
	return nil
}
