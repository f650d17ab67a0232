package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "scanner", "storage":
		return scannerTemplate, nil
	case "wire":
		return wireTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const scannerTemplate = `# Capture files: every message is preceded by a storage header.
framing = "storage"
max_buffer = 262204
workers = 4
log_level = "info"
metrics_namespace = "dltcore"
# metrics_addr = "127.0.0.1:9464"
`

const wireTemplate = `# Live transport: messages back to back, no storage header.
framing = "wire"
max_buffer = 65551
workers = 1
log_level = "warn"
metrics_namespace = "dltcore"
`
