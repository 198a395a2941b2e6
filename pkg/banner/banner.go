package banner

import (
	"fmt"

	"marginalia/pkg/config"
)

const banner = `
███╗   ███╗ █████╗ ██████╗  ██████╗ ██╗███╗   ██╗ █████╗ ██╗     ██╗ █████╗
████╗ ████║██╔══██╗██╔══██╗██╔════╝ ██║████╗  ██║██╔══██╗██║     ██║██╔══██╗
██╔████╔██║███████║██████╔╝██║  ███╗██║██╔██╗ ██║███████║██║     ██║███████║
██║╚██╔╝██║██╔══██║██╔══██╗██║   ██║██║██║╚██╗██║██╔══██║██║     ██║██╔══██║
██║ ╚═╝ ██║██║  ██║██║  ██║╚██████╔╝██║██║ ╚████║██║  ██║███████╗██║██║  ██║
╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚══════╝╚═╝╚═╝  ╚═╝
`

// Print prints the startup banner using the effective config.
func Print(eff config.EffectiveConfigResult, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:    %s\n", eff.Addr)
	fmt.Printf("Mode:      %s\n", eff.Mode)
	if eff.Mode == "session" {
		fmt.Printf("DB Path:   %s\n", eff.DBPath)
	} else {
		fmt.Printf("Workspace: %s\n", eff.WorkspaceRoot)
	}
	if version != "" {
		fmt.Printf("Version:   %s\n", version)
	}
	fmt.Printf("Config:    %s\n", eff.Source)

	fmt.Println("\n== Examples ===================================================")
	fmt.Println("curl 'http://<host>:<port>/v1/files'")
	fmt.Println("curl -X POST 'http://<host>:<port>/v1/files/{fileId}/annotations' -d '{\"startLine\":2,\"endLine\":2,\"content\":\"hi\"}'")
	fmt.Println("curl 'http://<host>:<port>/v1/files/{fileId}/export/source'")

	ed := 0
	vw := 0
	if eff.Config != nil {
		ed = len(eff.Config.Security.APIKeys.Editor)
		vw = len(eff.Config.Security.APIKeys.Viewer)
	}
	fmt.Println("\n== Production? =================================================")
	if ed > 0 {
		fmt.Printf("- Editor API keys: OK (%d)\n", ed)
	} else {
		fmt.Println("- Editor API keys: none (open local mode)")
	}
	if vw > 0 {
		fmt.Printf("- Viewer API keys: OK (%d)\n", vw)
	} else {
		fmt.Println("- Viewer API keys: none (open local mode)")
	}
	if eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
}
