package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// SetValue sets a configuration value by its YAML key, e.g. "read_timeout"
// or "disable_colab_cache". The result is not validated.
func (c *Config) SetValue(key, value string) error {
	field, ok := settingsField(reflect.ValueOf(&c.Settings).Elem(), key)
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	switch {
	case field.Type() == reflect.TypeOf(time.Duration(0)):
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		field.SetBool(b)
	case field.Kind() == reflect.String:
		field.SetString(value)
	default:
		return fmt.Errorf("configuration key %s cannot be set", key)
	}
	return nil
}

// GetValue returns a configuration value by its YAML key.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// ToMap returns every setting keyed by its YAML key.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		yamlKey, ok := yamlKey(settingsType.Field(i))
		if !ok {
			continue
		}

		fieldValue := settingsValue.Field(i)
		var strValue string
		switch {
		case fieldValue.Type() == reflect.TypeOf(time.Duration(0)):
			strValue = time.Duration(fieldValue.Int()).String()
		case fieldValue.Kind() == reflect.Bool:
			strValue = strconv.FormatBool(fieldValue.Bool())
		case fieldValue.Kind() == reflect.String:
			strValue = fieldValue.String()
		default:
			strValue = fmt.Sprintf("%v", fieldValue.Interface())
		}
		result[yamlKey] = strValue
	}

	return result
}

func settingsField(settings reflect.Value, key string) (reflect.Value, bool) {
	t := settings.Type()
	for i := 0; i < t.NumField(); i++ {
		if name, ok := yamlKey(t.Field(i)); ok && name == key {
			return settings.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Handle yaml tags with options (e.g., "cache_dir,omitempty").
func yamlKey(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return "", false
	}
	return strings.Split(tag, ",")[0], true
}
