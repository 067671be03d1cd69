package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigArgs(t *testing.T) {
	cfg := Config{
		Runtime:     "python3",
		Script:      "scripts/detect_trt_server.py",
		Engine:      "Models/petris_yolov5x_fp32.engine",
		Labels:      "Models/petris_data.yaml",
		InputHeight: 1280,
		InputWidth:  1280,
		ConfThresh:  0.25,
		NMSThresh:   0.45,
		Project:     "demo",
	}

	argv := strings.Join(cfg.args(), " ")

	assert.Contains(t, argv, "--input_shape 1,3,1280,1280")
	assert.Contains(t, argv, "--output_shape 1,100800,15")
	assert.Contains(t, argv, "--conf_thresh 0.25")
	assert.Contains(t, argv, "--nms_thresh 0.45")
	assert.Contains(t, argv, "--output_dir demo")
	assert.NotContains(t, argv, "--hide_labels")
	assert.NotContains(t, argv, "--hide_conf")

	assert.Equal(t, cfg.Script, cfg.args()[0])
}

func TestConfigArgsHideFlags(t *testing.T) {
	cfg := Config{
		Script:      "s.py",
		InputHeight: 640,
		InputWidth:  640,
		HideLabels:  true,
		HideConf:    true,
	}

	argv := cfg.args()
	assert.Contains(t, argv, "--hide_labels")
	assert.Contains(t, argv, "--hide_conf")
}

func TestConfigValidateInputShape(t *testing.T) {
	cfg := stubWorker(t, promptingWorker)
	cfg.InputHeight = 0

	assert.Error(t, cfg.Validate())
}
