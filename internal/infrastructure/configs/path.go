package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/env"
)

var configFlag = flag.String("config", "", "path to config file")

// DetermineConfigPath resolves the config file from --config,
// DEALERDESK_CONFIG or a list of well-known locations. An empty result
// means defaults and environment only.
func DetermineConfigPath() string {
	if !flag.Parsed() {
		flag.Parse()
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = env.GetString("DEALERDESK_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"../../config.yaml", // keep for local dev
			"/etc/dealerdesk/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
