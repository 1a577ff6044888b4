package jupiter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// errorObject is the object form of an "error" member.
type errorObject struct {
	Code    json.RawMessage `json:"code"`
	Message json.RawMessage `json:"message"`
}

// Discriminate decodes raw into T unless raw is a service error envelope, in
// which case a *ServiceError is returned and T is never attempted.
func Discriminate[T any](op Operation, raw []byte) (*T, error) {
	if svcErr, err := probeServiceError(op, raw); err != nil {
		return nil, err
	} else if svcErr != nil {
		return nil, svcErr
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: op, Stage: "response", Err: err}
	}
	return &out, nil
}

// DiscriminateEnvelope is Discriminate for endpoints that wrap their payload in
// Response. A success envelope without data is a shape mismatch.
func DiscriminateEnvelope[T any](op Operation, raw []byte) (*Response[T], error) {
	env, err := Discriminate[Response[json.RawMessage]](op, raw)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, &DecodeError{Op: op, Stage: "data", Err: errors.New("success envelope has no data")}
	}

	out := &Response[T]{TimeTaken: env.TimeTaken, ContextSlot: env.ContextSlot}
	if err := json.Unmarshal(env.Data, &out.Data); err != nil {
		return nil, &DecodeError{Op: op, Stage: "data", Err: err}
	}
	return out, nil
}

// probeServiceError returns a *DecodeError for malformed JSON, a
// *ServiceError for an error envelope, and (nil, nil) otherwise.
func probeServiceError(op Operation, raw []byte) (*ServiceError, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, &DecodeError{Op: op, Stage: "response", Err: fmt.Errorf("malformed json (%d bytes)", len(raw))}
	}
	// Only objects can carry an error envelope; arrays and scalars go straight
	// to the typed decode.
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}

	// Members are probed individually so one of an unexpected type cannot
	// hide the error keys.
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, &DecodeError{Op: op, Stage: "response", Err: err}
	}

	if errVal := members["error"]; len(errVal) > 0 && !bytes.Equal(errVal, []byte("null")) {
		svc := &ServiceError{Op: op, Code: rawCode(members["code"])}
		var obj errorObject
		switch {
		case errVal[0] == '"':
			svc.Message = rawCode(errVal)
		case errVal[0] == '{' && json.Unmarshal(errVal, &obj) == nil:
			svc.Message = rawCode(obj.Message)
			if c := rawCode(obj.Code); c != "" {
				svc.Code = c
			}
		default:
			svc.Message = string(errVal)
		}
		if svc.Message == "" {
			svc.Message = rawCode(members["message"])
		}
		return svc, nil
	}
	if code := rawCode(members["errorCode"]); code != "" {
		return &ServiceError{Op: op, Code: code, Message: rawCode(members["message"])}, nil
	}
	return nil, nil
}

// rawCode renders a member that may be sent as a string or any other JSON
// value; strings are unquoted, everything else is kept as written.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ParseMarketCaches decodes a market cache document.
func ParseMarketCaches(raw []byte) (MarketCaches, error) {
	out, err := Discriminate[MarketCaches](OpMarketCache, raw)
	if err != nil {
		return nil, err
	}
	return *out, nil
}
