package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type object map[string]json.RawMessage

var nutritionKeys = []string{"calories", "fat", "protein", "sugar", "carbohydrates", "fiber"}

// ParseIdeas parses raw model output into an ideas response. The output must
// be exactly one JSON object; surrounding prose is rejected with a
// *ParseError. Missing keys or wrong types are rejected with a *SchemaError.
func ParseIdeas(raw string) (*IdeasResponse, error) {
	data, err := strictJSON(raw)
	if err != nil {
		return nil, err
	}

	top, err := asObject(data, "$")
	if err != nil {
		return nil, err
	}
	items, err := requireArray(top, "dishes", "dishes")
	if err != nil {
		return nil, err
	}

	resp := &IdeasResponse{Dishes: make([]Dish, 0, len(items))}
	for i, item := range items {
		dish, err := parseDish(item, fmt.Sprintf("dishes[%d]", i))
		if err != nil {
			return nil, err
		}
		resp.Dishes = append(resp.Dishes, dish)
	}

	return resp, nil
}

// ParseSteps parses raw model output into a steps response, with the same
// strictness as ParseIdeas
func ParseSteps(raw string) (*StepsResponse, error) {
	data, err := strictJSON(raw)
	if err != nil {
		return nil, err
	}

	top, err := asObject(data, "$")
	if err != nil {
		return nil, err
	}
	items, err := requireArray(top, "steps", "steps")
	if err != nil {
		return nil, err
	}

	resp := &StepsResponse{Steps: make([]Step, 0, len(items))}
	for i, item := range items {
		path := fmt.Sprintf("steps[%d]", i)
		obj, err := asObject(item, path)
		if err != nil {
			return nil, err
		}
		if len(obj) == 0 {
			return nil, &SchemaError{Path: path, Reason: "expected at least one entry"}
		}

		step := make(Step, len(obj))
		for key, val := range obj {
			var v Value
			if err := decodeValue(val, path+"."+key, &v); err != nil {
				return nil, err
			}
			step[key] = v
		}
		resp.Steps = append(resp.Steps, step)
	}

	return resp, nil
}

func parseDish(data json.RawMessage, path string) (Dish, error) {
	var dish Dish

	obj, err := asObject(data, path)
	if err != nil {
		return dish, err
	}

	fields := []struct {
		key string
		dst any
	}{
		{"name", &dish.Name},
		{"category", &dish.Category},
		{"cuisine", &dish.Cuisine},
		{"time", &dish.Time},
		{"description", &dish.Description},
		{"ingredients", &dish.Ingredients},
		{"image_description", &dish.ImageDescription},
	}
	for _, f := range fields {
		if err := requireField(obj, f.key, path, f.dst); err != nil {
			return dish, err
		}
	}
	if strings.TrimSpace(dish.ImageDescription) == "" {
		return dish, &SchemaError{Path: path + ".image_description", Reason: "must not be empty"}
	}

	steps, err := requireArray(obj, "steps", path+".steps")
	if err != nil {
		return dish, err
	}
	dish.Steps = make([]string, len(steps))
	for j, step := range steps {
		if err := decodeValue(step, fmt.Sprintf("%s.steps[%d]", path, j), &dish.Steps[j]); err != nil {
			return dish, err
		}
	}

	nutrition, err := requireObject(obj, "nutrition", path+".nutrition")
	if err != nil {
		return dish, err
	}
	nutritionFields := []*Value{
		&dish.Nutrition.Calories,
		&dish.Nutrition.Fat,
		&dish.Nutrition.Protein,
		&dish.Nutrition.Sugar,
		&dish.Nutrition.Carbohydrates,
		&dish.Nutrition.Fiber,
	}
	for i, key := range nutritionKeys {
		if err := requireField(nutrition, key, path+".nutrition", nutritionFields[i]); err != nil {
			return dish, err
		}
	}

	return dish, nil
}

// strictJSON checks that raw holds exactly one JSON value
func strictJSON(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	var probe any
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return nil, newParseError(raw, err)
	}
	return json.RawMessage(trimmed), nil
}

func asObject(data json.RawMessage, path string) (object, error) {
	if !startsWith(data, '{') {
		return nil, &SchemaError{Path: path, Reason: "expected object"}
	}
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &SchemaError{Path: path, Reason: err.Error()}
	}
	return obj, nil
}

func requireArray(obj object, key, path string) ([]json.RawMessage, error) {
	val, ok := obj[key]
	if !ok {
		return nil, &SchemaError{Path: path, Reason: "missing required key"}
	}
	if !startsWith(val, '[') {
		return nil, &SchemaError{Path: path, Reason: "expected array"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(val, &items); err != nil {
		return nil, &SchemaError{Path: path, Reason: err.Error()}
	}
	return items, nil
}

func requireObject(obj object, key, path string) (object, error) {
	val, ok := obj[key]
	if !ok {
		return nil, &SchemaError{Path: path, Reason: "missing required key"}
	}
	return asObject(val, path)
}

func requireField(obj object, key, parent string, dst any) error {
	path := parent + "." + key
	val, ok := obj[key]
	if !ok {
		return &SchemaError{Path: path, Reason: "missing required key"}
	}
	return decodeValue(val, path, dst)
}

func decodeValue(val json.RawMessage, path string, dst any) error {
	if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
		return &SchemaError{Path: path, Reason: "must not be null"}
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return &SchemaError{Path: path, Reason: describeTypeError(err)}
	}
	return nil
}

func describeTypeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
	}
	return err.Error()
}

func startsWith(data json.RawMessage, c byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == c
}
