package fixtures

// Mutation of the static manifests before they are applied.
import (
	"io/ioutil"
	"path"

	errors "github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Kind selects where EditResourceYAML merges new values.
type Kind int

const (
	// ConfigMap values are merged into the "data" block.
	ConfigMap Kind = iota
	// Secret values are merged into the top level of the document.
	Secret
)

func (k Kind) String() string {
	switch k {
	case ConfigMap:
		return "ConfigMap"
	case Secret:
		return "Secret"
	default:
		return "Unknown"
	}
}

func (k Kind) outputName() string {
	if k == ConfigMap {
		return "configmap.yaml"
	}
	return "secret.yaml"
}

type document map[string]interface{}

func load(src string) (document, error) {
	b, err := ioutil.ReadFile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", src)
	}
	doc := document{}
	if err = yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", src)
	}
	return doc, nil
}

func (doc document) save(dst string) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "encode manifest %s", dst)
	}
	return errors.Wrapf(ioutil.WriteFile(dst, b, 0644), "write manifest %s", dst)
}

// nested returns the mapping at key, creating it when missing.
func (doc document) nested(key string) (map[interface{}]interface{}, error) {
	switch v := doc[key].(type) {
	case nil:
		m := map[interface{}]interface{}{}
		doc[key] = m
		return m, nil
	case map[interface{}]interface{}:
		return v, nil
	default:
		return nil, errors.Errorf("%q is not a mapping", key)
	}
}

// EditResourceYAML loads the manifest at src, merges data into it and writes
// the result to outDir, returning the new path. The source file is not
// modified.
func EditResourceYAML(src string, data map[string]interface{}, kind Kind, outDir string) (string, error) {
	doc, err := load(src)
	if err != nil {
		return "", err
	}
	switch kind {
	case ConfigMap:
		block, err := doc.nested("data")
		if err != nil {
			return "", errors.Wrapf(err, "manifest %s", src)
		}
		for k, v := range data {
			block[k] = v
		}
	case Secret:
		for k, v := range data {
			doc[k] = v
		}
	default:
		return "", errors.Errorf("unsupported fixture kind %d", kind)
	}
	dst := path.Join(outDir, kind.outputName())
	if err = doc.save(dst); err != nil {
		return "", err
	}
	return dst, nil
}

// EnableFeatureGate switches the FeatureGate manifest at src to the
// CustomNoUpgrade feature set with gate enabled and writes it to outDir.
func EnableFeatureGate(src string, outDir string, gate string) (string, error) {
	doc, err := load(src)
	if err != nil {
		return "", err
	}
	spec, err := doc.nested("spec")
	if err != nil {
		return "", errors.Wrapf(err, "manifest %s", src)
	}
	spec["featureSet"] = "CustomNoUpgrade"
	custom, ok := spec["customNoUpgrade"].(map[interface{}]interface{})
	if !ok {
		custom = map[interface{}]interface{}{}
		spec["customNoUpgrade"] = custom
	}
	enabled, _ := custom["enabled"].([]interface{})
	for _, g := range enabled {
		if g == gate {
			return writeFeatureGate(doc, outDir)
		}
	}
	custom["enabled"] = append(enabled, gate)
	return writeFeatureGate(doc, outDir)
}

func writeFeatureGate(doc document, outDir string) (string, error) {
	dst := path.Join(outDir, "featuregate.yaml")
	return dst, doc.save(dst)
}
