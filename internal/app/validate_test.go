package app

import (
	"testing"

	"marginalia/pkg/config"
)

func effFor(mode, ws, db string) config.EffectiveConfigResult {
	return config.EffectiveConfigResult{
		Config:        &config.Config{},
		Mode:          mode,
		WorkspaceRoot: ws,
		DBPath:        db,
	}
}

func TestValidateConfigModes(t *testing.T) {
	dir := t.TempDir()

	if err := validateConfig(effFor("workspace", dir, "")); err != nil {
		t.Errorf("valid workspace config rejected: %v", err)
	}
	if err := validateConfig(effFor("workspace", "", "")); err == nil {
		t.Error("workspace mode without a directory must fail")
	}
	if err := validateConfig(effFor("workspace", dir+"/missing", "")); err == nil {
		t.Error("nonexistent workspace directory must fail")
	}
	if err := validateConfig(effFor("session", "", dir+"/db")); err != nil {
		t.Errorf("valid session config rejected: %v", err)
	}
	if err := validateConfig(effFor("session", "", "")); err == nil {
		t.Error("session mode without a db path must fail")
	}
	if err := validateConfig(effFor("browser", "", "")); err == nil {
		t.Error("unknown mode must fail")
	}
}

func TestValidateConfigTLSPairing(t *testing.T) {
	eff := effFor("session", "", "./db")
	eff.Config.Server.TLS.CertFile = "cert.pem"
	if err := validateConfig(eff); err == nil {
		t.Error("cert without key must fail")
	}
	eff.Config.Server.TLS.KeyFile = "key.pem"
	if err := validateConfig(eff); err != nil {
		t.Errorf("cert+key rejected: %v", err)
	}
}
