package types

// Envelope is the body of every tool result: exactly one of Response or
// Error is set. Build it with Success or Failure.
type Envelope struct {
	Response any `json:"response,omitempty"`
	Error    any `json:"error,omitempty"`
}

func Success(payload any) Envelope {
	return Envelope{Response: payload}
}

func Failure(payload any) Envelope {
	return Envelope{Error: payload}
}

// Failed reports whether the envelope carries an error payload.
func (e Envelope) Failed() bool {
	return e.Error != nil
}
