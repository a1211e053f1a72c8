package reporter

import (
	"csi-shared-resource-e2e/common/e2e_config"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/reporters"
)

const testGroupPrefix = "e2e."

func GetReporters(name string) []Reporter {
	cfg := e2e_config.GetConfig()

	if cfg.ReportsDir == "" {
		return []Reporter{}
	}
	xmlFileSpec := cfg.ReportsDir + "/" + testGroupPrefix + name + "-junit.xml"
	junitReporter := reporters.NewJUnitReporter(xmlFileSpec)
	return []Reporter{junitReporter}
}

// GetGodogFormat returns the godog output format for a feature run: progress
// on stdout, plus a junit file when a reports directory is configured.
func GetGodogFormat(name string) string {
	cfg := e2e_config.GetConfig()

	if cfg.ReportsDir == "" {
		return "pretty"
	}
	return "pretty,junit:" + cfg.ReportsDir + "/" + testGroupPrefix + name + "-junit.xml"
}
