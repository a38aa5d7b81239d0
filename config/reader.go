package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/camsession/logging"
)

// Read reads a config from the given file. ${VAR} references are substituted from the
// environment before parsing.
func Read(filePath string, logger logging.Logger) (*SessionConfig, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*SessionConfig, error) {
	var cfg SessionConfig
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}
	cfg.ConfigFilePath = originalPath

	if err := cfg.Validate("session"); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	UpdateFileConfigDebug(cfg.Debug)
	logger.Debugw("read config", "path", originalPath, "camera_id", cfg.CameraID)
	return &cfg, nil
}
