package asset

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const settingReadOnly = "readOnly"

// Settings holds the options of a container. Values stay raw until the
// manager or a format loader asks for them with Get.
type Settings map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (s *Settings) Set(k string, v any) error {
	if *s == nil {
		*s = Settings{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal setting %q: %w", k, err)
	}

	(*s)[k] = json.RawMessage(b)
	return nil
}

// Get unmarshals the setting at key into out.
// Returns (found=false, nil) if not present.
func (s Settings) Get(key string, out any) (bool, error) {
	if s == nil {
		return false, nil
	}

	raw, ok := s[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal setting %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the setting key, if present.
func (s Settings) Delete(key string) {
	if s == nil {
		return
	}
	delete(s, key)
}

// ReadOnly reports whether records of the container must survive later
// writes to the same key.
func (s Settings) ReadOnly() (bool, error) {
	var ro bool
	_, err := s.Get(settingReadOnly, &ro)
	return ro, err
}

// UnmarshalYAML lets manifests written in YAML carry arbitrary settings.
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	var vals map[string]any
	if err := value.Decode(&vals); err != nil {
		return err
	}

	for k, v := range vals {
		if err := s.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
