// Package provider holds the per-provider field tables that drive the
// generic automation engine. Adding a provider means authoring a table,
// not a new code path.
package provider

import (
	"fmt"
	"strings"

	"formrunner/internal/domain/entity"
)

const phoneMinDigits = 10

type Provider struct {
	Key         string
	DisplayName string
	PortalURL   string

	// Fields lists the locator half of every FieldSpec in fill order.
	// Values are merged in per request via BuildFieldSpecs.
	Fields []entity.FieldSpec

	Required    []string
	PhoneFields []string
	Defaults    map[string]string
}

// BuildFieldSpecs merges caller-supplied values (and table defaults) into
// the provider's field table, preserving the declared order. Every field
// in the table yields exactly one spec, valued or not.
func (p *Provider) BuildFieldSpecs(values map[string]string) []entity.FieldSpec {
	specs := make([]entity.FieldSpec, 0, len(p.Fields))
	for _, f := range p.Fields {
		v, ok := values[f.Name]
		if (!ok || strings.TrimSpace(v) == "") && p.Defaults != nil {
			v = p.Defaults[f.Name]
		}
		specs = append(specs, f.WithValue(strings.TrimSpace(v)))
	}
	return specs
}

// Validate checks required and phone-like fields before the engine is
// invoked. Returns human-readable violation messages; empty means valid.
func (p *Provider) Validate(values map[string]string) []string {
	var problems []string

	for _, name := range p.Required {
		if _, hasDefault := p.Defaults[name]; hasDefault {
			continue
		}
		if strings.TrimSpace(values[name]) == "" {
			problems = append(problems, fmt.Sprintf("%s is required for %s automation", p.fieldLabel(name), p.DisplayName))
		}
	}

	for _, name := range p.PhoneFields {
		v := strings.TrimSpace(values[name])
		if v == "" {
			continue // covered by Required if mandatory
		}
		if len(v) < phoneMinDigits {
			problems = append(problems, fmt.Sprintf("valid %s is required (at least %d digits)", p.fieldLabel(name), phoneMinDigits))
		}
	}

	return problems
}

// SessionData returns the resolved values actually used for a run, for
// the audit trail in AutomationResult.
func (p *Provider) SessionData(specs []entity.FieldSpec) map[string]string {
	data := make(map[string]string, len(specs))
	for _, s := range specs {
		data[s.Name] = s.Value
	}
	return data
}

func (p *Provider) fieldLabel(name string) string {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Label
		}
	}
	return name
}

var registry = map[string]*Provider{
	TorrentPower.Key:  TorrentPower,
	AdaniGas.Key:      AdaniGas,
	AMCWater.Key:      AMCWater,
	AnyRoRGujarat.Key: AnyRoRGujarat,
}

func Lookup(key string) (*Provider, bool) {
	p, ok := registry[key]
	return p, ok
}

func All() []*Provider {
	return []*Provider{TorrentPower, AdaniGas, AMCWater, AnyRoRGujarat}
}
