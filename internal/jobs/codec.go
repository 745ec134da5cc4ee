package jobs

import (
	"encoding/json"
	"fmt"
)

func EncodePayload(k Kind, payload any) ([]byte, error) {
	if !k.IsValid() {
		return nil, ErrInvalidKind
	}

	switch k {
	case KindPasswordReset:
		switch payload.(type) {
		case PasswordResetPayload, *PasswordResetPayload:
		default:
			return nil, ErrPayloadKindMismatch
		}

	case KindAdminCredentials:
		switch payload.(type) {
		case AdminCredentialsPayload, *AdminCredentialsPayload:
		default:
			return nil, ErrPayloadKindMismatch
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j Job) (any, error) {
	if !j.Kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidPayload
	}

	switch j.Kind {
	case KindPasswordReset:
		var p PasswordResetPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return p, nil

	case KindAdminCredentials:
		var p AdminCredentialsPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidKind
	}
}
