package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UploadResponse is the body returned by POST /upload_pdf.
type UploadResponse struct {
	Message string `json:"message"`
}

// AskRequest is the body sent to POST /ask_pdf.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the body returned by POST /ask_pdf on success.
type AskResponse struct {
	Response string  `json:"response"`
	Metrics  Metrics `json:"metrics"`
}

// Metrics describes the resources used to answer one query.
type Metrics struct {
	LatencySeconds   Measurement `json:"latency"`
	CPUPercent       Measurement `json:"llm_cpu"`
	ResidentMemoryMB Measurement `json:"llm_mem_mb"`
}

// Measurement is a numeric metric the backend may be unable to collect.
// The backend reports that case as a string such as "Unavailable".
type Measurement struct {
	Value     float64
	Available bool
}

// Measured returns an available measurement.
func Measured(v float64) Measurement { return Measurement{Value: v, Available: true} }

// UnmarshalJSON accepts a number, a string, or null.
func (m *Measurement) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Measurement{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*m = Measured(v)
			return nil
		}
		*m = Measurement{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("metric is neither number nor string: %w", err)
	}
	*m = Measured(v)
	return nil
}

// MarshalJSON writes the value, or null when unavailable.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Available {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// String formats the value for display.
func (m Measurement) String() string {
	if !m.Available {
		return "unavailable"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// errorBody is the failure shape shared by both endpoints.
type errorBody struct {
	Message string `json:"message"`
}
