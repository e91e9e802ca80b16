package parser

import (
	"fmt"

	"github.com/vk/skyparse/internal/model"
)

// parseContext accumulates the observable effects of one build-file
// evaluation: declared rules and configuration reads. It is owned by a
// single ParseBuildFile call and implements builtins.Recorder.
type parseContext struct {
	rules     []model.Rule
	ruleNames map[string]struct{}
	reads     []string
	readsSeen map[string]struct{}
}

func newParseContext() *parseContext {
	return &parseContext{
		ruleNames: make(map[string]struct{}),
		readsSeen: make(map[string]struct{}),
	}
}

// RecordRule appends a declared rule, rejecting duplicate names within
// the file.
func (c *parseContext) RecordRule(rule model.Rule) error {
	if _, exists := c.ruleNames[rule.Name]; exists {
		return fmt.Errorf("rule %q declared more than once", rule.Name)
	}
	c.ruleNames[rule.Name] = struct{}{}
	c.rules = append(c.rules, rule)
	return nil
}

// RecordConfigRead notes one read_config access as "section.field",
// keeping first-read order and dropping repeats.
func (c *parseContext) RecordConfigRead(section, field string) {
	key := section + "." + field
	if _, seen := c.readsSeen[key]; seen {
		return
	}
	c.readsSeen[key] = struct{}{}
	c.reads = append(c.reads, key)
}

func (c *parseContext) configReads() []string {
	return c.reads
}
