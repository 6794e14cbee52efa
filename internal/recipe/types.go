package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errNotScalar = errors.New("expected string or number")

// Value is a scalar the model may emit either as a string or as a number,
// e.g. "time": "15" or "time": 15. The raw JSON text is kept so encoding a
// Value reproduces exactly what the model sent.
type Value struct {
	raw json.RawMessage
}

// StringValue wraps s as a JSON string value
func StringValue(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{raw: raw}
}

// NumberValue wraps n as a JSON number value
func NumberValue(n float64) Value {
	return Value{raw: json.RawMessage(strconv.FormatFloat(n, 'f', -1, 64))}
}

// String returns the value without JSON quoting
func (v Value) String() string {
	if len(v.raw) == 0 {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// IsNumber reports whether the model sent the value as a JSON number
func (v Value) IsNumber() bool {
	return len(v.raw) > 0 && v.raw[0] != '"'
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte(`""`), nil
	}
	return v.raw, nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errNotScalar
	}

	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errNotScalar
		}
	default:
		return errNotScalar
	}

	v.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Nutrition holds the per-serving estimates for a dish
type Nutrition struct {
	Calories      Value `json:"calories"`
	Fat           Value `json:"fat"`
	Protein       Value `json:"protein"`
	Sugar         Value `json:"sugar"`
	Carbohydrates Value `json:"carbohydrates"`
	Fiber         Value `json:"fiber"`
}

// Dish is one structured recipe suggestion. ImageDescription and ImageURL
// are mutually exclusive: the description is dropped once an image is
// attached.
type Dish struct {
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Cuisine          string           `json:"cuisine"`
	Time             Value            `json:"time"`
	Description      string           `json:"description"`
	Ingredients      map[string]Value `json:"ingredients"`
	Steps            []string         `json:"steps"`
	Nutrition        Nutrition        `json:"nutrition"`
	ImageDescription string           `json:"image_description,omitempty"`
	ImageURL         string           `json:"image_url,omitempty"`
}

// IdeasResponse is the body returned by the ideas endpoint
type IdeasResponse struct {
	Dishes []Dish `json:"dishes"`
}

// MarshalJSON always encodes dishes as an array, never null
func (r IdeasResponse) MarshalJSON() ([]byte, error) {
	dishes := r.Dishes
	if dishes == nil {
		dishes = []Dish{}
	}
	return json.Marshal(struct {
		Dishes []Dish `json:"dishes"`
	}{Dishes: dishes})
}

// Step is a single {"<n>": "<text>"} entry of a steps response
type Step map[string]Value

// StepsResponse is the body returned by the steps endpoint
type StepsResponse struct {
	Steps []Step `json:"steps"`
}

// MarshalJSON always encodes steps as an array, never null
func (r StepsResponse) MarshalJSON() ([]byte, error) {
	steps := r.Steps
	if steps == nil {
		steps = []Step{}
	}
	return json.Marshal(struct {
		Steps []Step `json:"steps"`
	}{Steps: steps})
}
