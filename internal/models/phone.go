package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PhoneNumber принимает номер телефона как JSON-строку или JSON-число
// и всегда хранит его строкой.
type PhoneNumber string

// UnmarshalJSON реализует json.Unmarshaler.
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PhoneNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("phone number must be a string or a number: %w", err)
	}
	*p = PhoneNumber(n.String())
	return nil
}
