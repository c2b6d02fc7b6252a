// yaml.go
//
// Loads a federation description file and builds frozen FederateConfigs
// from it. The file carries federation-wide time parameters plus one section
// per federate.

package fom

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FederationFile is the YAML shape of a federation description.
type FederationFile struct {
	Federation          string         `yaml:"federation"`
	Lookahead           int64          `yaml:"lookahead"`
	LeastCommonTimeStep int64          `yaml:"least-common-time-step"`
	TimePadding         int64          `yaml:"time-padding"`
	FOMModules          []string       `yaml:"fom-modules"`
	Federates           []FederateFile `yaml:"federates"`
}

// FederateFile is one federate section of a federation description.
type FederateFile struct {
	Name         string            `yaml:"name"`
	Regulating   *bool             `yaml:"regulating"`  // default true
	Constrained  *bool             `yaml:"constrained"` // default true
	Lookahead    int64             `yaml:"lookahead"`   // overrides the federation default
	Objects      []ObjectFile      `yaml:"objects"`
	Interactions []InteractionFile `yaml:"interactions"`
}

// ObjectFile is one object section of a federate.
type ObjectFile struct {
	Class      string          `yaml:"class"`
	Instance   string          `yaml:"instance"`
	Create     bool            `yaml:"create"`
	Attributes []AttributeFile `yaml:"attributes"`
}

// AttributeFile is one attribute mapping line.
type AttributeFile struct {
	FOMName    string        `yaml:"fom-name"`
	Path       string        `yaml:"path"`
	Encoding   string        `yaml:"encoding"`
	Condition  string        `yaml:"condition"`  // empty defaults to cyclic
	CycleTime  int64         `yaml:"cycle-time"` // 0 defaults to the federation LCTS
	Publish    *bool         `yaml:"publish"`    // default: object's create flag
	Subscribe  *bool         `yaml:"subscribe"`  // default: negation of create flag
	Owned      *bool         `yaml:"owned"`      // default: object's create flag
	Releasable bool          `yaml:"releasable"`
	Elements   []ElementFile `yaml:"elements"` // fixed-record element tree
}

// ElementFile is one fixed-record element line.
type ElementFile struct {
	Name     string        `yaml:"name"`
	Path     string        `yaml:"path"`
	Encoding string        `yaml:"encoding"`
	Elements []ElementFile `yaml:"elements"`
}

// InteractionFile is one interaction section of a federate.
type InteractionFile struct {
	Class      string `yaml:"class"`
	Publish    bool   `yaml:"publish"`
	Subscribe  bool   `yaml:"subscribe"`
	Parameters []struct {
		FOMName  string `yaml:"fom-name"`
		Path     string `yaml:"path"`
		Encoding string `yaml:"encoding"`
	} `yaml:"parameters"`
}

// LoadFederationFile parses path and builds one frozen FederateConfig per
// federate section. Any validation failure surfaces as an error naming the
// offending federate.
func LoadFederationFile(path string) ([]*FederateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read federation file: %w", err)
	}
	var file FederationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse federation file %s: %w", path, err)
	}
	return BuildFederation(&file)
}

// BuildFederation turns a parsed federation description into frozen
// FederateConfigs.
func BuildFederation(file *FederationFile) ([]*FederateConfig, error) {
	if file.Federation == "" {
		return nil, fmt.Errorf("federation description has no federation name")
	}
	if len(file.Federates) == 0 {
		return nil, fmt.Errorf("federation %q declares no federates", file.Federation)
	}

	names := make([]string, 0, len(file.Federates))
	for _, ff := range file.Federates {
		names = append(names, ff.Name)
	}

	configs := make([]*FederateConfig, 0, len(file.Federates))
	for _, ff := range file.Federates {
		fc := NewFederateConfig(ff.Name, file.Federation)
		fc.SetLeastCommonTimeStep(file.LeastCommonTimeStep)
		fc.SetTimePadding(file.TimePadding)
		if ff.Lookahead > 0 {
			fc.SetLookahead(ff.Lookahead)
		} else {
			fc.SetLookahead(file.Lookahead)
		}
		if ff.Regulating != nil {
			fc.SetRegulating(*ff.Regulating)
		}
		if ff.Constrained != nil {
			fc.SetConstrained(*ff.Constrained)
		}
		for _, name := range names {
			if name != ff.Name {
				fc.AddKnownFederate(name)
			}
		}
		for _, mod := range file.FOMModules {
			fc.AddFOMModule(mod)
		}
		for _, of := range ff.Objects {
			obj, err := buildObject(of)
			if err != nil {
				return nil, fmt.Errorf("federate %q: %w", ff.Name, err)
			}
			fc.AddObject(obj)
		}
		for _, inf := range ff.Interactions {
			ic := NewInteractionConfig(inf.Class, inf.Publish, inf.Subscribe)
			for _, p := range inf.Parameters {
				ic.AddParameter(p.FOMName, p.Path, Encoding(p.Encoding))
			}
			fc.AddInteraction(ic)
		}
		if err := fc.Freeze(); err != nil {
			return nil, err
		}
		configs = append(configs, fc)
	}
	return configs, nil
}

// buildObject builds one ObjectConfig from its file section.
func buildObject(of ObjectFile) (*ObjectConfig, error) {
	obj := NewObjectConfig(of.Class, of.Instance, of.Create)
	for _, af := range of.Attributes {
		m := AttributeMapping{
			FOMName:      af.FOMName,
			VarPath:      af.Path,
			Encoding:     Encoding(af.Encoding),
			Condition:    UpdateCondition(af.Condition),
			CycleTime:    af.CycleTime,
			Publish:      of.Create,
			Subscribe:    !of.Create,
			LocallyOwned: of.Create,
			Releasable:   af.Releasable,
		}
		if m.Condition == "" {
			m.Condition = ConditionCyclic
		}
		if af.Publish != nil {
			m.Publish = *af.Publish
		}
		if af.Subscribe != nil {
			m.Subscribe = *af.Subscribe
		}
		if af.Owned != nil {
			m.LocallyOwned = *af.Owned
		}
		if len(af.Elements) > 0 {
			if m.Encoding != EncodingFixedRecord {
				return nil, fmt.Errorf("attribute %q declares elements but encoding is %q", af.FOMName, m.Encoding)
			}
			m.Record = buildElement(ElementFile{
				Name:     af.FOMName,
				Elements: af.Elements,
				Encoding: string(EncodingFixedRecord),
			})
		}
		obj.AddAttributeSpec(m)
	}
	return obj, nil
}

// buildElement converts a file element tree into a FixedRecordSpec tree.
func buildElement(ef ElementFile) *FixedRecordSpec {
	if len(ef.Elements) > 0 {
		children := make([]*FixedRecordSpec, 0, len(ef.Elements))
		for _, sub := range ef.Elements {
			children = append(children, buildElement(sub))
		}
		return NewRecordElement(ef.Name, children...)
	}
	return NewLeafElement(ef.Name, ef.Path, Encoding(ef.Encoding))
}
