package main

import (
	"fmt"
	"os"

	"csi-shared-resource-e2e/common"
	"csi-shared-resource-e2e/common/classify"
	"csi-shared-resource-e2e/common/cmdrunner"
	"csi-shared-resource-e2e/common/e2e_config"
	"csi-shared-resource-e2e/common/k8stest"
	"csi-shared-resource-e2e/common/oc"
	"csi-shared-resource-e2e/common/project"
	"csi-shared-resource-e2e/common/scenario"

	flags "github.com/jessevdk/go-flags"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

type options struct {
	Client    string `long:"client" description:"cluster command line client"`
	Marker    string `long:"marker" description:"delete every project whose name contains this string"`
	Namespace string `long:"namespace" description:"namespace holding the shared resources"`
	DryRun    bool   `long:"dry-run" description:"only list what would be deleted"`
}

func main() {
	opts := options{
		Client:    common.ClientBinary(),
		Marker:    common.NamespaceMarker(),
		Namespace: common.NSShared(),
	}
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Shared resource smoke cleanup"
	parser.LongDescription = "Removes the shared resources and testing namespaces left behind by smoke scenarios"
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		os.Exit(code)
	}

	k8stest.SetupLogging(os.Stderr)
	if err := run(opts, e2e_config.GetConfig().ProjectAPIGroup); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options, apiGroup string) error {
	runner, err := cmdrunner.New()
	if err != nil {
		return err
	}
	ocClient := oc.New(runner, opts.Client)
	controller := scenario.NewController(ocClient, project.NewClient(runner, classify.New(apiGroup), opts.Client),
		scenario.Options{SharedNamespace: opts.Namespace, Marker: opts.Marker})

	if !opts.DryRun {
		return controller.Teardown(nil)
	}
	for _, kind := range common.KnownShareKinds() {
		if ocClient.IsResourceIn(kind.String()) {
			fmt.Printf("%s %s -n %s\n", kind, kind.ConventionalName(), opts.Namespace)
		}
	}
	for _, ns := range controller.TestingNamespaces() {
		fmt.Printf("project %s\n", ns)
	}
	logf.Log.Info("Dry run, nothing deleted")
	return nil
}
