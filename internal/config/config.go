package config

import (
	"encoding/json"
	"os"
	"sync"
)

const (
	DefaultConfigPath string = "config.json"

	DefaultInputHeight = 1280
	DefaultInputWidth  = 1280
	DefaultConfThresh  = 0.25
	DefaultNMSThresh   = 0.45
	DefaultProject     = "results"
	DefaultModelsDir   = "Models"
)

type Config struct {
	mu sync.RWMutex

	ModelsDir string `json:"models_dir"`

	InputHeight int     `json:"input_height"`
	InputWidth  int     `json:"input_width"`
	ConfThresh  float64 `json:"conf_thresh"`
	NMSThresh   float64 `json:"nms_thresh"`
	HideLabels  bool    `json:"hide_labels"`
	HideConf    bool    `json:"hide_conf"`
	Project     string  `json:"project"`

	LastImage  string `json:"last_image"`
	LastFolder string `json:"last_folder"`
}

func (c *Config) GetInputHeight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.InputHeight
}

func (c *Config) SetInputHeight(h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InputHeight = h
}

func (c *Config) GetInputWidth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.InputWidth
}

func (c *Config) SetInputWidth(w int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InputWidth = w
}

func (c *Config) GetConfThresh() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ConfThresh
}

func (c *Config) SetConfThresh(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ConfThresh = v
}

func (c *Config) GetNMSThresh() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NMSThresh
}

func (c *Config) SetNMSThresh(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NMSThresh = v
}

func (c *Config) GetProject() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Project
}

func (c *Config) SetProject(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Project = name
}

func (c *Config) GetHideLabels() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.HideLabels
}

func (c *Config) SetHideLabels(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HideLabels = v
}

func (c *Config) GetHideConf() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.HideConf
}

func (c *Config) SetHideConf(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HideConf = v
}

func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func (c *Config) SaveByDefault() error {
	return c.Save(DefaultConfigPath)
}

func LoadConfigFile(path string) *Config {
	cfg := NewDefaultConfig()

	if _, err := os.Stat(path); err == nil {
		f, err := os.Open(path)
		if err != nil {
			return cfg
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return NewDefaultConfig()
		}
	}

	return cfg
}

func NewDefaultConfig() *Config {
	return &Config{
		ModelsDir:   DefaultModelsDir,
		InputHeight: DefaultInputHeight,
		InputWidth:  DefaultInputWidth,
		ConfThresh:  DefaultConfThresh,
		NMSThresh:   DefaultNMSThresh,
		Project:     DefaultProject,
	}
}
