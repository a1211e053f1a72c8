package locations

// For now the relative paths come straight from the configuration, resolved
// against the e2e root directory unless already absolute.

import (
	"os"
	"path"

	"csi-shared-resource-e2e/common/e2e_config"
)

func resolve(dir string) string {
	if path.IsAbs(dir) {
		return path.Clean(dir)
	}
	return path.Clean(e2e_config.GetConfig().E2eRootDir + "/" + dir)
}

// GetFixturesDir returns the directory holding the static manifests.
func GetFixturesDir() string {
	return resolve(e2e_config.GetConfig().FixturesDir)
}

// GetScriptsDir returns the directory holding the helper scripts.
func GetScriptsDir() string {
	return resolve(e2e_config.GetConfig().ScriptsDir)
}

// This is a generated directory, so it is created on demand.
func GetGeneratedYamlsDir() (string, error) {
	dir := resolve(e2e_config.GetConfig().GeneratedDir)
	return dir, os.MkdirAll(dir, 0755)
}
