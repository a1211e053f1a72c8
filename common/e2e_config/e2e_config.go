package e2e_config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/ilyakaznacheev/cleanenv"
)

const ConfigDir = "/configurations"

// E2EConfig is a application configuration structure
type E2EConfig struct {
	ConfigName string `yaml:"configName" env-default:"default"`
	Platform   struct {
		// Name indicates where the suite is currently being run from
		Name string `yaml:"name" env-default:"openshift"`
	} `yaml:"platform"`

	// Cluster command line client, invoked through the shell.
	ClientBinary string `yaml:"clientBinary" env:"e2e_client_binary" env-default:"oc"`
	// API group reported in "already exists" messages for projects.
	ProjectAPIGroup string `yaml:"projectAPIGroup" env:"e2e_project_api_group" env-default:"openshift.io"`

	E2eRootDir string `yaml:"e2eRootDir" env:"e2e_root_dir" env-default:"."`
	// Test results path
	OutputDir string `yaml:"outputDir" env:"OUTPUT_DIR"`
	// Run configuration
	ReportsDir string `yaml:"reportsDir" env:"e2e_reports_dir"`
	// Static manifests (configmap.yaml, secret.yaml, featuregate.yaml)
	FixturesDir string `yaml:"fixturesDir" env:"e2e_fixtures_dir" env-default:"smoke/testdata"`
	// Manifests mutated by steps are written here before being applied
	GeneratedDir string `yaml:"generatedDir" env:"e2e_generated_dir" env-default:"_output/smoke"`
	// Shell scripts invoked as black boxes by steps
	ScriptsDir string `yaml:"scriptsDir" env:"e2e_scripts_dir" env-default:"smoke/scripts"`

	SharedResourceNamespace string `yaml:"sharedResourceNamespace" env:"e2e_shared_namespace" env-default:"default"`
	TestNamespaceMarker     string `yaml:"testNamespaceMarker" env:"e2e_namespace_marker" env-default:"testing-namespace"`

	Driver struct {
		Namespace string `yaml:"namespace" env-default:"openshift-cluster-csi-drivers"`
		DaemonSet string `yaml:"daemonSet" env-default:"shared-resource-csi-driver-node"`
	} `yaml:"driver"`

	// When set, a failed cluster probe before a scenario fails every
	// remaining scenario of the run without probing again.
	AbortRunOnProbeFailure bool `yaml:"abortRunOnProbeFailure" env:"e2e_abort_on_probe_failure" env-default:"false"`

	Waits struct {
		// StatusInterval and StatusTimeout units are seconds
		StatusInterval int `yaml:"statusInterval" env-default:"20"`
		StatusTimeout  int `yaml:"statusTimeout" env-default:"180"`
		// ResourceTimeout is passed to "wait --timeout", units are seconds
		ResourceTimeout int `yaml:"resourceTimeout" env-default:"180"`
		// OutputTimeout and OutputInterval units are seconds
		OutputTimeout  int `yaml:"outputTimeout" env-default:"140"`
		OutputInterval int `yaml:"outputInterval" env-default:"10"`
		// PodReadyTimeout units are seconds
		PodReadyTimeout int `yaml:"podReadyTimeout" env-default:"120"`
	} `yaml:"waits"`

	Loki struct {
		PushURL string `yaml:"pushURL" env:"e2e_loki_push_url" env-default:"https://logs-prod-us-central1.grafana.net/loki/api/v1/push"`
	} `yaml:"loki"`
}

var once sync.Once
var e2eConfig E2EConfig

// GetConfig is called before logging is set up, so failures are printed and
// turned into panics.
func GetConfig() E2EConfig {
	once.Do(func() {
		var err error
		// If OS envvar e2e_config_file is defined the named file in the
		// configuration directory is read, environment variables override
		// its settings. Otherwise defaults and environment variables are used.
		value, ok := os.LookupEnv("e2e_config_file")
		if ok {
			e2eRootDir := os.Getenv("e2e_root_dir")
			configFile := path.Clean(e2eRootDir + ConfigDir + "/" + value)
			fmt.Printf("Using configuration file %s\n", configFile)
			err = cleanenv.ReadConfig(configFile, &e2eConfig)
		} else {
			err = cleanenv.ReadEnv(&e2eConfig)
		}
		if err != nil {
			panic(fmt.Sprintf("%v", err))
		}

		if e2eConfig.ClientBinary == "" {
			panic("Configuration error unspecified cluster client binary")
		}

		if e2eConfig.ReportsDir != "" {
			cfgBytes, _ := yaml.Marshal(e2eConfig)
			cfgUsedFile := path.Clean(e2eConfig.ReportsDir + "/used-" + e2eConfig.ConfigName + "-" + e2eConfig.Platform.Name + ".yaml")
			err = ioutil.WriteFile(cfgUsedFile, cfgBytes, 0644)
			if err == nil {
				fmt.Printf("Resolved config written to %s\n", cfgUsedFile)
			}
		}
	})

	return e2eConfig
}
