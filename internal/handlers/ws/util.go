package ws

import "encoding/json"

// Deserialize parses one inbound envelope into its typed frame. A missing
// payload is tolerated: frames with no fields (PING) come in as bare
// {"type": ...}.
func Deserialize(jsonBytes []byte) (Message, error) {
	var wrapper Envelope
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	msg, err := CreateMessage(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}

	if len(wrapper.Payload) > 0 {
		if err := json.Unmarshal(wrapper.Payload, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Serialize wraps an outbound payload in the wire envelope.
func Serialize(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
