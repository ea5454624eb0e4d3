package queue

import (
	"encoding/json"
	"fmt"
)

// Messages follow the NestJS microservice transport so the existing file and
// summary workers can consume them unchanged.

type Pattern struct {
	Cmd string `json:"cmd"`
}

type Envelope struct {
	Pattern Pattern         `json:"pattern"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id,omitempty"`
}

type Reply struct {
	ID         string          `json:"id"`
	Response   json.RawMessage `json:"response,omitempty"`
	Err        json.RawMessage `json:"err,omitempty"`
	IsDisposed bool            `json:"isDisposed"`
}

// RemoteError is an error reported by the responder.
type RemoteError struct {
	Cmd     string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %s", e.Cmd, e.Message)
}

func encodeEnvelope(cmd, id string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return json.Marshal(Envelope{Pattern: Pattern{Cmd: cmd}, Data: data, ID: id})
}

func decodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Pattern.Cmd == "" {
		return Envelope{}, fmt.Errorf("envelope has no pattern")
	}
	return env, nil
}

func encodeReply(id string, response interface{}, handlerErr error) ([]byte, error) {
	reply := Reply{ID: id, IsDisposed: true}
	if handlerErr != nil {
		errBody, err := json.Marshal(map[string]string{"message": handlerErr.Error()})
		if err != nil {
			return nil, err
		}
		reply.Err = errBody
	} else {
		data, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		reply.Response = data
	}
	return json.Marshal(reply)
}

// decodeReply unmarshals the response into out, or returns the remote error.
func decodeReply(cmd string, body []byte, out interface{}) error {
	var reply Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return fmt.Errorf("failed to unmarshal reply: %w", err)
	}

	if len(reply.Err) > 0 && string(reply.Err) != "null" {
		return &RemoteError{Cmd: cmd, Message: remoteMessage(reply.Err)}
	}

	if out == nil || len(reply.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(reply.Response, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// remoteMessage accepts either a bare string or an object with a message field.
func remoteMessage(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}
