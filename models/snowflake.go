package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Snowflake is a Discord 64-bit identifier. It is serialized as a bare JSON number so
// documents stay compatible with files that stored ids as integers, and accepts
// either a number or a quoted string when decoding.
type Snowflake string

func (s Snowflake) String() string {
	return string(s)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseUint(string(s), 10, 64); err != nil {
		return json.Marshal(string(s))
	}
	return []byte(s), nil
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = Snowflake(raw)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("invalid snowflake %s: %w", string(data), err)
	}
	if _, err := strconv.ParseUint(number.String(), 10, 64); err != nil {
		return fmt.Errorf("invalid snowflake %s: %w", string(data), err)
	}
	*s = Snowflake(number.String())
	return nil
}
