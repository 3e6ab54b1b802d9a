package configuration

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=settings.go -destination=mock_configuration/mock_settings.go

const (
	// KeyAskForKernelRestart controls whether the user is asked to confirm a kernel restart.
	KeyAskForKernelRestart = "askForKernelRestart"
)

var (
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrInvalidSettingValue = errors.New("invalid setting value")
	ErrMissingResource     = errors.New("a resource is required to update a resource-scoped setting")
)

// Target is the scope a setting is written to.
type Target int

const (
	Global Target = iota
	Resource
)

func (t Target) String() string {
	switch t {
	case Global:
		return "global"
	case Resource:
		return "resource"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// Settings are the effective settings of a resource.
type Settings struct {
	AskForKernelRestart bool `json:"askForKernelRestart" yaml:"askForKernelRestart"`
}

func DefaultSettings() Settings {
	return Settings{
		AskForKernelRestart: true,
	}
}

// Store reads and writes settings. Values written for a resource take precedence over global values.
type Store interface {
	// Settings returns the effective settings of the given resource. An empty resource yields the global settings.
	Settings(ctx context.Context, resource string) (Settings, error)

	// UpdateSetting writes a single setting to the given scope.
	UpdateSetting(ctx context.Context, key string, value interface{}, resource string, target Target) error

	Close() error
}

// validateSetting checks that the key is known and that the value has the key's type.
func validateSetting(key string, value interface{}) error {
	switch key {
	case KeyAskForKernelRestart:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: \"%s\" must be a boolean, got %T", ErrInvalidSettingValue, key, value)
		}
		return nil
	default:
		return fmt.Errorf("%w: \"%s\"", ErrUnknownSetting, key)
	}
}

// apply overlays the given values onto settings. Unknown keys and ill-typed values are ignored.
func apply(settings *Settings, values map[string]interface{}) {
	for key, value := range values {
		if validateSetting(key, value) != nil {
			continue
		}

		switch key {
		case KeyAskForKernelRestart:
			settings.AskForKernelRestart = value.(bool)
		}
	}
}

// layers holds the values written to each scope.
type layers struct {
	Global    map[string]interface{}            `yaml:"global,omitempty"`
	Resources map[string]map[string]interface{} `yaml:"resources,omitempty"`
}

func newLayers() *layers {
	return &layers{
		Global:    make(map[string]interface{}),
		Resources: make(map[string]map[string]interface{}),
	}
}

func (l *layers) settings(resource string) Settings {
	settings := DefaultSettings()
	apply(&settings, l.Global)
	if resource != "" {
		apply(&settings, l.Resources[resource])
	}
	return settings
}

func (l *layers) set(key string, value interface{}, resource string, target Target) error {
	if err := validateSetting(key, value); err != nil {
		return err
	}

	switch target {
	case Global:
		if l.Global == nil {
			l.Global = make(map[string]interface{})
		}
		l.Global[key] = value
	case Resource:
		if resource == "" {
			return ErrMissingResource
		}
		if l.Resources == nil {
			l.Resources = make(map[string]map[string]interface{})
		}
		values, ok := l.Resources[resource]
		if !ok {
			values = make(map[string]interface{})
			l.Resources[resource] = values
		}
		values[key] = value
	default:
		return fmt.Errorf("%w: unknown target %s", ErrInvalidSettingValue, target)
	}

	return nil
}
