package catalog

import "strings"

// Issue is one advisory finding from the catalog consistency scan.
type Issue struct {
	Table   string `json:"table"`
	Key     string `json:"key"`
	Service string `json:"service"`
	Label   string `json:"label,omitempty"`
	Reason  string `json:"reason"`
}

// Check scans every rule table against the declared services and reports
// rules that can never match. It is advisory and runs outside the evaluation
// path; a rule listed here is silently skipped during matching, never an
// error.
func (c *Catalog) Check() []Issue {
	if c == nil {
		return nil
	}
	var issues []Issue

	for _, rule := range c.ComboRules {
		issues = append(issues, c.checkConditions("comboRules", rule.Key, rule.Conditions, labelEquals)...)
	}
	for _, rule := range c.BenefitRules {
		issues = append(issues, c.checkConditions("benefitRules", rule.Key, rule.Conditions, labelContains)...)
	}
	for _, key := range c.CardServiceKeys() {
		entry := c.CardDiscounts[key]
		svc, ok := c.Service(key)
		if !ok {
			issues = append(issues, Issue{
				Table:   "cardDiscounts",
				Key:     key,
				Service: key,
				Reason:  "unknown card service",
			})
			continue
		}
		if len(svc.Options) == 0 {
			continue
		}
		for _, opt := range entry.Options {
			if !serviceHasLabel(svc, opt.Label, labelEquals) {
				issues = append(issues, Issue{
					Table:   "cardDiscounts",
					Key:     key,
					Service: key,
					Label:   opt.Label,
					Reason:  "option not declared for service",
				})
			}
		}
	}
	return issues
}

func (c *Catalog) checkConditions(table, key string, cond Conditions, match func(declared, allowed string) bool) []Issue {
	var issues []Issue
	for _, required := range cond.Required {
		if _, ok := c.Service(required); !ok {
			issues = append(issues, Issue{
				Table:   table,
				Key:     key,
				Service: required,
				Reason:  "required service not in catalog",
			})
		}
	}
	for service, allowed := range cond.Options {
		svc, ok := c.Service(service)
		if !ok {
			issues = append(issues, Issue{
				Table:   table,
				Key:     key,
				Service: service,
				Reason:  "condition service not in catalog",
			})
			continue
		}
		if len(svc.Options) == 0 {
			continue
		}
		for _, label := range allowed {
			if !serviceHasLabel(svc, label, match) {
				issues = append(issues, Issue{
					Table:   table,
					Key:     key,
					Service: service,
					Label:   label,
					Reason:  "option not declared for service",
				})
			}
		}
	}
	return issues
}

func serviceHasLabel(svc Service, label string, match func(declared, allowed string) bool) bool {
	for _, opt := range svc.Options {
		if match(opt.Label, label) {
			return true
		}
	}
	return false
}

func labelEquals(declared, allowed string) bool {
	return declared == allowed
}

// labelContains mirrors the tolerant matching bundle-benefit rules use, so
// drifted labels do not produce false alarms.
func labelContains(declared, allowed string) bool {
	return declared == allowed || strings.Contains(declared, allowed) || strings.Contains(allowed, declared)
}
