package app

import (
	"fmt"
	"os"

	"marginalia/pkg/config"
)

// validateConfig fails fast on configurations the server cannot run with.
func validateConfig(eff config.EffectiveConfigResult) error {
	switch eff.Mode {
	case "workspace":
		if eff.WorkspaceRoot == "" {
			return fmt.Errorf("workspace mode requires a workspace directory")
		}
		fi, err := os.Stat(eff.WorkspaceRoot)
		if err != nil {
			return fmt.Errorf("workspace directory %s: %w", eff.WorkspaceRoot, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("workspace path %s is not a directory", eff.WorkspaceRoot)
		}
	case "session":
		if eff.DBPath == "" {
			return fmt.Errorf("session mode requires a db path")
		}
	default:
		return fmt.Errorf("unknown storage mode %q (want workspace or session)", eff.Mode)
	}

	tls := eff.Config.Server.TLS
	if (tls.CertFile == "") != (tls.KeyFile == "") {
		return fmt.Errorf("tls requires both cert_file and key_file")
	}

	if eff.Config.Validation.MaxContentLen < 0 {
		return fmt.Errorf("validation.max_content_len must not be negative")
	}
	return nil
}
