package common

// ShareKind identifies a shared resource type served by the CSI driver.
type ShareKind string

const (
	ShareConfigMap ShareKind = "sharedconfigmap"
	ShareSecret    ShareKind = "sharedsecret"
)

func (kind ShareKind) String() string {
	return string(kind)
}

// ConventionalName returns the name the fixtures give to an instance of kind.
func (kind ShareKind) ConventionalName() string {
	switch kind {
	case ShareConfigMap:
		return SharedConfigMapName
	case ShareSecret:
		return SharedSecretName
	default:
		return ""
	}
}

// ParseShareKind maps the short forms used in step text ("configmap",
// "secret") as well as the full kind names onto a ShareKind.
func ParseShareKind(s string) (ShareKind, bool) {
	switch s {
	case "configmap", "sharedconfigmap", "shared configmap":
		return ShareConfigMap, true
	case "secret", "sharedsecret", "shared secret":
		return ShareSecret, true
	default:
		return "", false
	}
}
