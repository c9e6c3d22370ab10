package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads and unmarshals a yaml prefab spec.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type ColliderSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type PlayerSpec struct {
	Name      string       `yaml:"name"`
	MoveSpeed float64      `yaml:"move_speed"`
	JumpSpeed float64      `yaml:"jump_speed"`
	Health    int          `yaml:"health"`
	Collider  ColliderSpec `yaml:"collider"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type ItemSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	MaxStack    int    `yaml:"max_stack"`
	Description string `yaml:"description"`
}

type ItemsSpec struct {
	Items []ItemSpec `yaml:"items"`
}

func LoadItemsSpec() (*ItemsSpec, error) {
	spec, err := LoadSpec[ItemsSpec]("items.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type HotbarSpec struct {
	Slots int      `yaml:"slots"`
	Bind  []string `yaml:"bind"`
}

func LoadHotbarSpec() (*HotbarSpec, error) {
	spec, err := LoadSpec[HotbarSpec]("hotbar.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type FaderSpec struct {
	Frames int `yaml:"frames"`
}

func LoadFaderSpec() (*FaderSpec, error) {
	spec, err := LoadSpec[FaderSpec]("fader.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type CameraSpec struct {
	Zoom       float64 `yaml:"zoom"`
	Smoothness float64 `yaml:"smoothness"`
}

func LoadCameraSpec() (*CameraSpec, error) {
	spec, err := LoadSpec[CameraSpec]("camera.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
