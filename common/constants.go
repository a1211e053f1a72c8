package common

const NSDefault = "default"
const NSDriver = "openshift-cluster-csi-drivers"
const DriverDaemonSet = "shared-resource-csi-driver-node"
const CSIDriverName = "csi.sharedresource.openshift.io"

// TestingNamespaceMarker  every namespace whose name contains this string is
// deleted after each scenario.
const TestingNamespaceMarker = "testing-namespace"

// Names used by the shared resource fixtures.
const SharedConfigMapName = "my-shared-config"
const SharedSecretName = "my-shared-secret"

// ProjectAPIGroup  API group reported by the CLI for project objects.
const ProjectAPIGroup = "openshift.io"

// ClusterProbeProject  project queried before every scenario.
const ClusterProbeProject = "default"

// FeatureGateFixture  manifest switched to the CustomNoUpgrade feature set.
const FeatureGateFixture = "featuregate.yaml"
