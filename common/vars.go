package common

import "csi-shared-resource-e2e/common/e2e_config"

// ClientBinary returns the cluster command line client used by the suite.
func ClientBinary() string {
	return e2e_config.GetConfig().ClientBinary
}

// NSShared return the namespace in which the shared resources are created
func NSShared() string {
	return e2e_config.GetConfig().SharedResourceNamespace
}

// NamespaceMarker returns the marker identifying namespaces created by scenarios.
func NamespaceMarker() string {
	return e2e_config.GetConfig().TestNamespaceMarker
}
