// Package prompts holds the canned prompt templates: the supervisor's routing
// prompts and the fixed instruction each specialist forwards to the model.
//
// The defaults are embedded; a YAML file can override any of them.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/medbot/internal/route"
)

//go:embed prompts.yaml
var defaultYAML []byte

// Catalog is the full set of prompt templates.
type Catalog struct {
	Banner      string       `yaml:"banner"`
	Supervisor  Supervisor   `yaml:"supervisor"`
	AgentSystem string       `yaml:"agent_system"`
	Specialists []Specialist `yaml:"specialists"`
}

// Supervisor holds the classifier prompts.
// System may reference {members}; Route may reference {options}.
type Supervisor struct {
	System string `yaml:"system"`
	Route  string `yaml:"route"`
}

// Specialist is one role's one-tool wrapper.
type Specialist struct {
	Agent       route.Route `yaml:"agent"`
	Tool        string      `yaml:"tool"`
	Description string      `yaml:"description"`
	System      string      `yaml:"system,omitempty"`
	Instruction string      `yaml:"instruction"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("prompts: embedded catalog: %v", err))
	}
	return c
}

// Load layers the YAML file at path over the embedded defaults.
// An empty path returns the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompts %s: %w", path, err)
	}
	var override Catalog
	if err := yaml.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("parsing prompts %s: %w", path, err)
	}
	if err := c.merge(override); err != nil {
		return nil, fmt.Errorf("prompts %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("prompts %s: %w", path, err)
	}
	return c, nil
}

func parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) merge(o Catalog) error {
	setIf(&c.Banner, o.Banner)
	setIf(&c.Supervisor.System, o.Supervisor.System)
	setIf(&c.Supervisor.Route, o.Supervisor.Route)
	setIf(&c.AgentSystem, o.AgentSystem)
	for _, s := range o.Specialists {
		i := c.index(s.Agent)
		if i < 0 {
			return fmt.Errorf("unknown specialist %q", s.Agent)
		}
		cur := &c.Specialists[i]
		setIf(&cur.Tool, s.Tool)
		setIf(&cur.Description, s.Description)
		setIf(&cur.System, s.System)
		setIf(&cur.Instruction, s.Instruction)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Catalog) index(agent route.Route) int {
	for i, s := range c.Specialists {
		if s.Agent == agent {
			return i
		}
	}
	return -1
}

// Validate checks that every fixed role has exactly one complete entry.
func (c *Catalog) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Supervisor.System) == "" || strings.TrimSpace(c.Supervisor.Route) == "" {
		errs = append(errs, errors.New("supervisor prompts must not be empty"))
	}
	seen := make(map[route.Route]bool, len(c.Specialists))
	for _, s := range c.Specialists {
		if !s.Agent.IsMember() {
			errs = append(errs, fmt.Errorf("unknown specialist %q", s.Agent))
			continue
		}
		if seen[s.Agent] {
			errs = append(errs, fmt.Errorf("duplicate specialist %q", s.Agent))
		}
		seen[s.Agent] = true
		if s.Tool == "" || strings.TrimSpace(s.Instruction) == "" {
			errs = append(errs, fmt.Errorf("specialist %q needs a tool name and an instruction", s.Agent))
		}
	}
	for _, m := range route.Members {
		if !seen[m] {
			errs = append(errs, fmt.Errorf("missing specialist %q", m))
		}
	}
	return errors.Join(errs...)
}

// Specialist returns the entry for agent.
func (c *Catalog) Specialist(agent route.Route) (Specialist, bool) {
	if i := c.index(agent); i >= 0 {
		return c.Specialists[i], true
	}
	return Specialist{}, false
}

// SupervisorSystem renders the supervisor system prompt with the member list.
func (c *Catalog) SupervisorSystem() string {
	return strings.ReplaceAll(c.Supervisor.System, "{members}", strings.Join(route.Strings(route.Members), ", "))
}

// RouteInstruction renders the trailing routing question with every option.
func (c *Catalog) RouteInstruction() string {
	quoted := make([]string, 0, len(route.Options()))
	for _, o := range route.Options() {
		quoted = append(quoted, "'"+string(o)+"'")
	}
	return strings.ReplaceAll(c.Supervisor.Route, "{options}", "["+strings.Join(quoted, ", ")+"]")
}

// AgentSystemFor renders the system prompt of the agent wrapping s.
func (c *Catalog) AgentSystemFor(s Specialist) string {
	return strings.NewReplacer("{agent}", string(s.Agent), "{tool}", s.Tool).Replace(c.AgentSystem)
}
